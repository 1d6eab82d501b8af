package view

import (
	"context"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MountID is the id of the single container the page is composed into.
const MountID = "app"

// Bootstrap composes header, content and footer into the page.
type Bootstrap struct {
	content *Content
}

// NewBootstrap creates the page composer.
func NewBootstrap(content *Content) *Bootstrap {
	return &Bootstrap{content: content}
}

// Document builds the full page. The mount container receives header,
// content and footer in that order, once.
func (b *Bootstrap) Document(ctx context.Context) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	root.AppendChild(head())

	body := element(atom.Body)
	mount := element(atom.Div, attr("id", MountID))
	mount.AppendChild(Header())
	mount.AppendChild(b.content.Build(ctx))
	mount.AppendChild(Footer())
	body.AppendChild(mount)
	root.AppendChild(body)

	doc.AppendChild(root)
	return doc
}

// Render writes the page to w.
func (b *Bootstrap) Render(ctx context.Context, w io.Writer) error {
	return html.Render(w, b.Document(ctx))
}

func head() *html.Node {
	h := element(atom.Head)
	h.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	h.AppendChild(element(atom.Meta, attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")))
	title := element(atom.Title)
	title.AppendChild(text(Title))
	h.AppendChild(title)
	h.AppendChild(element(atom.Link, attr("rel", "stylesheet"), attr("href", "/static/style.css")))
	h.AppendChild(element(atom.Script, attr("src", "/static/app.js"), attr("defer", "")))
	return h
}
