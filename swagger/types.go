package swagger

// Definition is a Swagger 2.0 schema object.
type Definition struct {
	Type                 string                 `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string                 `json:"format,omitempty" yaml:"format,omitempty"`
	Description          string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Properties           map[string]*Definition `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items                *Definition            `json:"items,omitempty" yaml:"items,omitempty"`
	Ref                  string                 `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	OriginalRef          string                 `json:"originalRef,omitempty" yaml:"originalRef,omitempty"`
	Required             []string               `json:"required,omitempty" yaml:"required,omitempty"`
	Enum                 []any                  `json:"enum,omitempty" yaml:"enum,omitempty"`
	Example              any                    `json:"example,omitempty" yaml:"example,omitempty"`
	AdditionalProperties any                    `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}

// Parameter is an operation parameter.
type Parameter struct {
	Name        string      `json:"name" yaml:"name"`
	In          string      `json:"in,omitempty" yaml:"in,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Type        string      `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string      `json:"format,omitempty" yaml:"format,omitempty"`
	Schema      *Definition `json:"schema,omitempty" yaml:"schema,omitempty"`
	Items       *Definition `json:"items,omitempty" yaml:"items,omitempty"`
}

// Response is one entry of an operation's responses map.
type Response struct {
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Definition `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// PathInfo is a single operation (one method of one path).
type PathInfo struct {
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string              `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Consumes    []string            `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// Document is the subset of a Swagger 2.0 api-docs payload the helper reads.
type Document struct {
	Swagger string `json:"swagger,omitempty" yaml:"swagger,omitempty"`
	Info    struct {
		Title   string `json:"title,omitempty" yaml:"title,omitempty"`
		Version string `json:"version,omitempty" yaml:"version,omitempty"`
	} `json:"info" yaml:"info"`
	BasePath    string                 `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	Paths       map[string]*PathItem   `json:"paths,omitempty" yaml:"paths,omitempty"`
	Definitions map[string]*Definition `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// PathItem holds the operations of one path. Parameters apply to all of them.
type PathItem struct {
	Get        *PathInfo   `json:"get,omitempty" yaml:"get,omitempty"`
	Put        *PathInfo   `json:"put,omitempty" yaml:"put,omitempty"`
	Post       *PathInfo   `json:"post,omitempty" yaml:"post,omitempty"`
	Delete     *PathInfo   `json:"delete,omitempty" yaml:"delete,omitempty"`
	Options    *PathInfo   `json:"options,omitempty" yaml:"options,omitempty"`
	Head       *PathInfo   `json:"head,omitempty" yaml:"head,omitempty"`
	Patch      *PathInfo   `json:"patch,omitempty" yaml:"patch,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// operations lists the defined operations keyed by lower-case method.
func (p *PathItem) operations() map[string]*PathInfo {
	ops := map[string]*PathInfo{}
	for method, info := range map[string]*PathInfo{
		"get": p.Get, "put": p.Put, "post": p.Post, "delete": p.Delete,
		"options": p.Options, "head": p.Head, "patch": p.Patch,
	} {
		if info != nil {
			ops[method] = info
		}
	}
	return ops
}

// Operation identifies one documented API entry.
type Operation struct {
	Method  string   `json:"method"`
	Path    string   `json:"path"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags,omitempty"`
}
