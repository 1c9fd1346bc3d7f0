// Package swagger reads Swagger 2.0 api-docs and turns one operation into
// the ApiData snapshot sent to the generator.
package swagger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"swagger_interface_helper/generator"
)

// ErrOperationNotFound is returned when a method/path pair is not documented.
var ErrOperationNotFound = errors.New("operation not found")

// Parse decodes a JSON or YAML Swagger document.
func Parse(raw []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty swagger document")
	}
	var doc Document
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode swagger json: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode swagger yaml: %w", err)
	}
	return &doc, nil
}

// Fetch downloads and parses the api-docs at url.
func Fetch(ctx context.Context, client *http.Client, url string) (*Document, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch api-docs: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch api-docs: status %d", resp.StatusCode)
	}
	return Parse(raw)
}

// Operations lists every operation sorted by path, then method.
func (d *Document) Operations() []Operation {
	var ops []Operation
	for path, item := range d.Paths {
		if item == nil {
			continue
		}
		for method, info := range item.operations() {
			ops = append(ops, Operation{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: info.Summary,
				Tags:    info.Tags,
			})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// Lookup finds the operation for method (any case) and path.
func (d *Document) Lookup(method, path string) (*PathInfo, error) {
	item, ok := d.Paths[path]
	if !ok || item == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrOperationNotFound, strings.ToUpper(method), path)
	}
	info, ok := item.operations()[strings.ToLower(method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrOperationNotFound, strings.ToUpper(method), path)
	}
	return info, nil
}

// Parameters returns the operation's parameters, path-level ones first.
func (d *Document) Parameters(method, path string) ([]generator.ApiParameter, error) {
	info, err := d.Lookup(method, path)
	if err != nil {
		return nil, err
	}
	var out []generator.ApiParameter
	for _, p := range d.mergedParameters(path, info) {
		out = append(out, generator.ApiParameter{
			Name:        p.Name,
			Description: p.Description,
			Type:        p.In,
			Required:    p.Required,
			DataType:    d.parameterType(p),
		})
	}
	return out, nil
}

// APIData builds the documentation snapshot for one operation.
func (d *Document) APIData(method, path string) (generator.ApiData, error) {
	info, err := d.Lookup(method, path)
	if err != nil {
		return generator.ApiData{}, err
	}
	params, err := d.Parameters(method, path)
	if err != nil {
		return generator.ApiData{}, err
	}
	md := d.renderMarkdown(strings.ToUpper(method), path, info, params)
	html, err := renderHTML(md)
	if err != nil {
		return generator.ApiData{}, err
	}
	title := info.Summary
	if title == "" {
		title = strings.ToUpper(method) + " " + path
	}
	return generator.ApiData{Documentation: md, RawHTML: html, Title: title}, nil
}

func (d *Document) mergedParameters(path string, info *PathInfo) []Parameter {
	var params []Parameter
	seen := map[string]bool{}
	for _, p := range info.Parameters {
		seen[p.In+":"+p.Name] = true
	}
	if item := d.Paths[path]; item != nil {
		for _, p := range item.Parameters {
			if !seen[p.In+":"+p.Name] {
				params = append(params, p)
			}
		}
	}
	return append(params, info.Parameters...)
}

func (d *Document) parameterType(p Parameter) string {
	if p.Schema != nil {
		return d.typeName(p.Schema)
	}
	return d.typeName(&Definition{Type: p.Type, Format: p.Format, Items: p.Items})
}

// typeName renders a schema the way knife4j pages show it.
func (d *Document) typeName(def *Definition) string {
	if def == nil {
		return ""
	}
	if name := refName(def); name != "" {
		return name
	}
	switch def.Type {
	case "array":
		return "array<" + d.typeName(def.Items) + ">"
	case "object", "":
		if def.AdditionalProperties != nil {
			return "map"
		}
		if def.Type == "" && len(def.Properties) == 0 {
			return ""
		}
		return "object"
	}
	if def.Format != "" {
		return def.Type + "(" + def.Format + ")"
	}
	return def.Type
}

// refName prefers springfox's originalRef, which keeps generic names intact.
func refName(def *Definition) string {
	if def.OriginalRef != "" {
		return def.OriginalRef
	}
	if def.Ref != "" {
		return strings.TrimPrefix(def.Ref, "#/definitions/")
	}
	return ""
}

func (d *Document) resolve(def *Definition) (string, *Definition) {
	if def == nil {
		return "", nil
	}
	if def.Type == "array" && refName(def) == "" {
		return d.resolve(def.Items)
	}
	name := refName(def)
	if name == "" {
		return "", def
	}
	if target, ok := d.Definitions[name]; ok {
		return name, target
	}
	return name, d.Definitions[strings.TrimPrefix(def.Ref, "#/definitions/")]
}
