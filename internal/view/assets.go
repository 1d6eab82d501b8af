package view

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Assets returns the script and stylesheet served under /static/.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
