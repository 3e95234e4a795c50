package generator

// OpenAPISpec represents the subset of an OpenAPI 3.1.0 document the
// generator assembles. Operation documentation fields are typed; every
// schema-bearing slot is held as an opaque value because this tool documents
// operations and never interprets schemas.
type OpenAPISpec struct {
	OpenAPI string               `json:"openapi" yaml:"openapi"`
	Info    Info                 `json:"info" yaml:"info"`
	Paths   map[string]*PathItem `json:"paths" yaml:"paths"`
	Tags    []Tag                `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Info represents the info object
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// Tag represents a tag for grouping operations
type Tag struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem represents operations for a specific path
type PathItem struct {
	Get     *Operation `json:"get,omitempty" yaml:"get,omitempty"`
	Post    *Operation `json:"post,omitempty" yaml:"post,omitempty"`
	Put     *Operation `json:"put,omitempty" yaml:"put,omitempty"`
	Delete  *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
	Patch   *Operation `json:"patch,omitempty" yaml:"patch,omitempty"`
	Head    *Operation `json:"head,omitempty" yaml:"head,omitempty"`
	Options *Operation `json:"options,omitempty" yaml:"options,omitempty"`
}

// setOperation stores op under the given HTTP method. Methods the path item
// does not model are dropped.
func (p *PathItem) setOperation(method string, op *Operation) {
	switch method {
	case "GET":
		p.Get = op
	case "POST":
		p.Post = op
	case "PUT":
		p.Put = op
	case "DELETE":
		p.Delete = op
	case "PATCH":
		p.Patch = op
	case "HEAD":
		p.Head = op
	case "OPTIONS":
		p.Options = op
	}
}

// Operation represents an API operation
type Operation struct {
	OperationID string               `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string             `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated  bool                 `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Parameters  []Parameter          `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]*Response `json:"responses" yaml:"responses"`
}

// Parameter represents a parameter in an operation
type Parameter struct {
	Name        string      `json:"name" yaml:"name"`
	In          string      `json:"in" yaml:"in"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      interface{} `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Response represents an API response
type Response struct {
	Description string                `json:"description" yaml:"description"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// MediaType represents a media type
type MediaType struct {
	Schema interface{} `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ExtractedOperation is one annotated handler found in the scanned source.
// Summary and Description are the split doc comment; RawLines keeps the
// collected lines the split was computed from.
type ExtractedOperation struct {
	ID          string // operation ID, package.Func unless overridden
	Package     string
	FuncName    string
	Receiver    string // receiver type name for methods, "" for plain functions
	RawLines    []string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	SourceFile  string
	Line        int
}

// Route is a route registration discovered in the scanned source.
type Route struct {
	Method      string
	Path        string
	HandlerName string
	SourceFile  string
	Line        int
}
