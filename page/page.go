// Package page mounts the helper into Swagger documentation pages and
// scrapes documentation text out of the HTML they render.
package page

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContainerID is the fixed id of the helper's mount point.
const ContainerID = "swagger-helper-app"

// ErrNoBody is returned when a document has no body to mount into.
var ErrNoBody = errors.New("document has no body")

// NewDocument returns an empty html/head/body tree.
func NewDocument() *html.Node {
	doc, _ := html.Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	return doc
}

// Mount returns the helper container of doc, creating it at the end of body
// when it does not exist yet. created reports whether this call added it.
func Mount(doc *html.Node) (container *html.Node, created bool, err error) {
	if existing := FindByID(doc, ContainerID); existing != nil {
		return existing, false, nil
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return nil, false, ErrNoBody
	}
	container = &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: ContainerID}},
	}
	body.AppendChild(container)
	return container, true, nil
}

// Inject mounts the helper container into the page read from r and adds the
// helper script after it, then writes the page to w. A page that already
// carries the container is written back unchanged.
func Inject(r io.Reader, w io.Writer, scriptSrc string) (bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return false, err
	}
	container, created, err := Mount(doc)
	if err != nil {
		return false, err
	}
	if created && scriptSrc != "" {
		container.Parent.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "script",
			DataAtom: atom.Script,
			Attr:     []html.Attribute{{Key: "src", Val: scriptSrc}},
		})
	}
	return created, html.Render(w, doc)
}

// FindByID returns the first element with the given id.
func FindByID(n *html.Node, id string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && attr(c, "id") == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Head returns the document head, or nil.
func Head(doc *html.Node) *html.Node {
	return findElement(doc, atom.Head)
}

// Root climbs to the document node n belongs to.
func Root(n *html.Node) *html.Node {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	return n
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == a {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits n depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
