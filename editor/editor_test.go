package editor

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"swagger_interface_helper/page"
)

func newContainer(t *testing.T) (*html.Node, *html.Node) {
	t.Helper()
	doc := page.NewDocument()
	container, _, err := page.Mount(doc)
	if err != nil {
		t.Fatal(err)
	}
	return doc, container
}

func TestCreatePrepopulates(t *testing.T) {
	_, container := newContainer(t)
	container.AppendChild(&html.Node{Type: html.TextNode, Data: "loading..."})

	e := Create(container, Config{Content: "export interface A {}", ReadOnly: true})
	if e == nil {
		t.Fatal("expected editor")
	}
	if got := e.Value(); got != "export interface A {}" {
		t.Errorf("unexpected value %q", got)
	}
	out, err := e.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "loading...") {
		t.Error("previous container content should be cleared")
	}
	if !strings.Contains(out, "readonly") {
		t.Errorf("expected readonly attribute in %s", out)
	}
	if !strings.Contains(out, "<style>") {
		t.Errorf("expected style element in %s", out)
	}
}

func TestSetValueRoundTrip(t *testing.T) {
	_, container := newContainer(t)
	e := Create(container, Config{})

	for _, x := range []string{"", "a", "line1\nline2\n", "<script>alert(1)</script>", "  多字节 \t"} {
		e.SetValue(x)
		if got := e.Value(); got != x {
			t.Errorf("SetValue(%q) then Value() = %q", x, got)
		}
	}

	e.SetValue("<b>x</b>")
	out, _ := e.Render()
	if !strings.Contains(out, "&lt;b&gt;x&lt;/b&gt;") {
		t.Errorf("textarea content must be escaped: %s", out)
	}
}

func TestDestroyReleasesElementsAndIsRepeatable(t *testing.T) {
	doc, container := newContainer(t)
	e := Create(container, Config{Content: "x"})

	if err := e.Destroy(); err != nil {
		t.Fatalf("first destroy: %v", err)
	}
	if container.FirstChild != nil {
		t.Error("textarea should be removed from the container")
	}
	if page.Head(doc).FirstChild != nil {
		t.Error("style should be removed from head")
	}
	if err := e.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("second destroy: expected ErrDestroyed, got %v", err)
	}
}

func TestCreateFailureReturnsNil(t *testing.T) {
	if Create(nil, Config{}) != nil {
		t.Error("nil container must not yield an editor")
	}
	detached := &html.Node{Type: html.ElementNode, Data: "div"}
	if Create(detached, Config{}) != nil {
		t.Error("detached container must not yield an editor")
	}
}
