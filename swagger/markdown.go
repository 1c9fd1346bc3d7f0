package swagger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"swagger_interface_helper/generator"
)

var converter = goldmark.New(goldmark.WithExtensions(extension.Table))

func renderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// schemaQueue walks referenced schemas breadth first, each name once, so
// self-referencing definitions terminate.
type schemaQueue struct {
	doc   *Document
	seen  map[string]bool
	items []namedSchema
}

type namedSchema struct {
	name string
	def  *Definition
}

func newSchemaQueue(doc *Document) *schemaQueue {
	return &schemaQueue{doc: doc, seen: map[string]bool{}}
}

func (q *schemaQueue) push(fallback string, def *Definition) {
	name, target := q.doc.resolve(def)
	if target == nil || len(target.Properties) == 0 {
		return
	}
	if name == "" {
		name = fallback
	}
	if q.seen[name] {
		return
	}
	q.seen[name] = true
	q.items = append(q.items, namedSchema{name: name, def: target})
}

func (q *schemaQueue) drain(sb *strings.Builder) {
	for len(q.items) > 0 {
		next := q.items[0]
		q.items = q.items[1:]
		q.writeSchema(sb, next)
	}
}

func (q *schemaQueue) writeSchema(sb *strings.Builder, s namedSchema) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", s.name))
	if s.def.Description != "" {
		sb.WriteString(cell(s.def.Description) + "\n\n")
	}
	sb.WriteString("| 参数名称 | 参数说明 | 是否必须 | 数据类型 |\n")
	sb.WriteString("|------|------|------|------|\n")
	required := map[string]bool{}
	for _, r := range s.def.Required {
		required[r] = true
	}
	for _, name := range sortedKeys(s.def.Properties) {
		prop := s.def.Properties[name]
		typ := q.doc.typeName(prop)
		if typ == "object" {
			typ = s.name + "." + name
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			cell(name), cell(describe(prop)), yesNo(required[name]), cell(typ)))
		q.push(s.name+"."+name, prop)
	}
	sb.WriteString("\n")
}

// renderMarkdown writes the documentation page for one operation. params is
// the parameter table as Parameters returns it.
func (d *Document) renderMarkdown(method, path string, info *PathInfo, params []generator.ApiParameter) string {
	var sb strings.Builder
	title := info.Summary
	if title == "" {
		title = method + " " + path
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**接口地址** `%s`\n\n", d.BasePath+path))
	sb.WriteString(fmt.Sprintf("**请求方式** `%s`\n\n", method))
	if len(info.Consumes) > 0 {
		sb.WriteString(fmt.Sprintf("**请求数据类型** `%s`\n\n", strings.Join(info.Consumes, ",")))
	}
	if info.Description != "" {
		sb.WriteString(info.Description + "\n\n")
	}

	sb.WriteString("## 请求参数\n\n")
	if len(params) == 0 {
		sb.WriteString("暂无\n\n")
	} else {
		sb.WriteString("| 参数名称 | 参数说明 | 请求类型 | 是否必须 | 数据类型 |\n")
		sb.WriteString("|------|------|------|------|------|\n")
		for _, p := range params {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				cell(p.Name), cell(p.Description), cell(p.Type), yesNo(p.Required), cell(p.DataType)))
		}
		sb.WriteString("\n")
		req := newSchemaQueue(d)
		for _, p := range d.mergedParameters(path, info) {
			if p.Schema != nil {
				req.push(p.Name, p.Schema)
			}
		}
		req.drain(&sb)
	}

	sb.WriteString("## 响应参数\n\n")
	ok, found := info.Responses["200"]
	if !found || ok.Schema == nil {
		sb.WriteString("暂无\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("**响应类型** `%s`\n\n", d.typeName(ok.Schema)))
	resp := newSchemaQueue(d)
	resp.push("Response", ok.Schema)
	resp.drain(&sb)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func describe(def *Definition) string {
	desc := def.Description
	if len(def.Enum) > 0 {
		vals := make([]string, 0, len(def.Enum))
		for _, v := range def.Enum {
			vals = append(vals, fmt.Sprint(v))
		}
		desc = strings.TrimSpace(desc + " 可选值: " + strings.Join(vals, ","))
	}
	if def.Example != nil {
		desc = strings.TrimSpace(desc + fmt.Sprintf(" 示例: %v", def.Example))
	}
	return desc
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func yesNo(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func sortedKeys(m map[string]*Definition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
