// Package editor is the plain text surface that shows generated code inside
// the helper container.
package editor

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"swagger_interface_helper/page"
)

// ErrDestroyed is returned by Destroy once the editor has been released.
var ErrDestroyed = errors.New("editor already destroyed")

// Config 编辑器配置。
type Config struct {
	Content  string `json:"content"`
	Language string `json:"language"`
	ReadOnly bool   `json:"read_only"`
}

const textareaStyle = "width:100%;height:100%;padding:15px;border:none;outline:none;resize:none;" +
	"background-color:#ffffff;color:#333333;font-family:Menlo, Monaco, Courier New, monospace;" +
	"font-size:14px;line-height:1.6;box-sizing:border-box;overflow-y:auto"

const scrollbarCSS = `
#` + page.ContainerID + ` textarea::-webkit-scrollbar { width: 8px; height: 8px; }
#` + page.ContainerID + ` textarea::-webkit-scrollbar-track { background: #f5f5f5; border-radius: 4px; }
#` + page.ContainerID + ` textarea::-webkit-scrollbar-thumb { background: rgba(0, 135, 127, 0.3); border-radius: 4px; border: 2px solid #f5f5f5; }
#` + page.ContainerID + ` textarea::-webkit-scrollbar-thumb:hover { background: rgba(0, 135, 127, 0.5); }
#` + page.ContainerID + ` textarea:focus { box-shadow: 0 0 0 2px rgba(0, 135, 127, 0.2); }
#` + page.ContainerID + ` textarea::selection { background: rgba(0, 135, 127, 0.1); }
`

// Editor owns one textarea in a container and one style element in the
// document head.
type Editor struct {
	mu        sync.Mutex
	container *html.Node
	head      *html.Node
	textarea  *html.Node
	style     *html.Node
	destroyed bool
}

// Create replaces the container's children with a textarea holding
// cfg.Content. It returns nil when the container cannot host an editor.
func Create(container *html.Node, cfg Config) *Editor {
	if container == nil || container.Type != html.ElementNode {
		log.Error().Msg("failed to create editor: container is not an element")
		return nil
	}
	head := page.Head(page.Root(container))
	if head == nil {
		log.Error().Str("container", container.Data).Msg("failed to create editor: container is not attached to a document")
		return nil
	}

	for c := container.FirstChild; c != nil; {
		next := c.NextSibling
		container.RemoveChild(c)
		c = next
	}

	attrs := []html.Attribute{
		{Key: "style", Val: textareaStyle},
		{Key: "spellcheck", Val: "false"},
	}
	if cfg.Language != "" {
		attrs = append(attrs, html.Attribute{Key: "data-language", Val: cfg.Language})
	}
	if cfg.ReadOnly {
		attrs = append(attrs, html.Attribute{Key: "readonly"})
	}
	textarea := &html.Node{Type: html.ElementNode, Data: "textarea", DataAtom: atom.Textarea, Attr: attrs}
	textarea.AppendChild(&html.Node{Type: html.TextNode, Data: cfg.Content})

	style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: scrollbarCSS})

	head.AppendChild(style)
	container.AppendChild(textarea)

	return &Editor{container: container, head: head, textarea: textarea, style: style}
}

// Value returns the current text.
func (e *Editor) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.textarea.FirstChild == nil {
		return ""
	}
	return e.textarea.FirstChild.Data
}

// SetValue replaces the text.
func (e *Editor) SetValue(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.textarea.FirstChild == nil {
		e.textarea.AppendChild(&html.Node{Type: html.TextNode})
	}
	e.textarea.FirstChild.Data = content
}

// Destroy removes the textarea and the style element.
func (e *Editor) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrDestroyed
	}
	e.destroyed = true
	if e.textarea.Parent == e.container {
		e.container.RemoveChild(e.textarea)
	}
	if e.style.Parent == e.head {
		e.head.RemoveChild(e.style)
	}
	return nil
}

// Render serialises the style element and the container.
func (e *Editor) Render() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var sb strings.Builder
	if !e.destroyed {
		if err := html.Render(&sb, e.style); err != nil {
			return "", err
		}
	}
	if err := html.Render(&sb, e.container); err != nil {
		return "", err
	}
	return sb.String(), nil
}
