package view

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Title is the page banner text.
const Title = "Countries & Weather"

// Header builds the static page banner.
func Header() *html.Node {
	header := element(atom.Header)
	h1 := element(atom.H1)
	h1.AppendChild(text(Title))
	header.AppendChild(h1)
	return header
}
