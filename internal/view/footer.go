package view

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FooterText credits the two data sources.
const FooterText = "Country data: REST Countries · Weather: Open-Meteo"

// Footer builds the static page footer.
func Footer() *html.Node {
	footer := element(atom.Footer)
	p := element(atom.P)
	p.AppendChild(text(FooterText))
	footer.AppendChild(p)
	return footer
}
