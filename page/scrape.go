package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractText turns the HTML of an API panel into plain documentation text.
// Table rows become " | " separated lines; script and style are dropped.
func ExtractText(rawHTML string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		writeText(&sb, n)
	}
	return tidy(sb.String()), nil
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" {
			if n.Data != "" {
				space(sb)
			}
			return
		}
		if strings.TrimLeft(n.Data, " \t\r\n") != n.Data {
			space(sb)
		}
		sb.WriteString(text)
		if strings.TrimRight(n.Data, " \t\r\n") != n.Data {
			sb.WriteString(" ")
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript:
			return
		case atom.Br:
			sb.WriteString("\n")
			return
		case atom.Tr:
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
					continue
				}
				var cell strings.Builder
				writeText(&cell, c)
				cells = append(cells, strings.TrimSpace(cell.String()))
			}
			sb.WriteString(strings.Join(cells, " | "))
			sb.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		sb.WriteString("\n")
	}
}

// space separates inline words unless a separator is already there.
func space(sb *strings.Builder) {
	s := sb.String()
	if s == "" || strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n") {
		return
	}
	sb.WriteString(" ")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Li, atom.Ul, atom.Ol, atom.Table, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// tidy trims each line and collapses runs of blank lines.
func tidy(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
