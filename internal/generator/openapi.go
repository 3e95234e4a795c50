package generator

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/opdoc-labs/opdoc/pkg/opdoc"
)

// BuildOptions configures document assembly.
type BuildOptions struct {
	Title   string
	Version string
}

// BuildSpec assembles an OpenAPI document from detected routes and extracted
// operation documentation. Routes without an annotated handler still appear
// in the document; they just carry no summary or description.
func BuildSpec(routes []Route, ops []ExtractedOperation, opts BuildOptions) *OpenAPISpec {
	spec := &OpenAPISpec{
		OpenAPI: "3.1.0",
		Info:    Info{Title: opts.Title, Version: opts.Version},
		Paths:   map[string]*PathItem{},
	}

	index := operationIndex(ops)
	tagSet := map[string]bool{}

	for _, route := range routes {
		op := &Operation{
			OperationID: route.HandlerName,
			Responses: map[string]*Response{
				"200": {Description: "Successful response"},
			},
		}

		if ext, ok := index[route.HandlerName]; ok {
			op.OperationID = ext.ID
			op.Summary = ext.Summary
			op.Description = ext.Description
			op.Tags = ext.Tags
			op.Deprecated = ext.Deprecated
			for _, tag := range ext.Tags {
				tagSet[tag] = true
			}
		}

		for _, name := range ExtractPathParameters(route.Path) {
			op.Parameters = append(op.Parameters, Parameter{
				Name:     name,
				In:       "path",
				Required: true,
				Schema:   map[string]interface{}{"type": "string"},
			})
		}

		method := route.Method
		if method == "" {
			method = InferMethodFromHandler(route.HandlerName)
		}

		item := spec.Paths[route.Path]
		if item == nil {
			item = &PathItem{}
			spec.Paths[route.Path] = item
		}
		item.setOperation(method, op)
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		spec.Tags = append(spec.Tags, Tag{Name: tag})
	}

	return spec
}

// operationIndex maps both the qualified name (package.Func) and the bare
// function name to the extracted operation, because route registrations may
// reference handlers either way.
func operationIndex(ops []ExtractedOperation) map[string]ExtractedOperation {
	index := map[string]ExtractedOperation{}
	for _, op := range ops {
		index[qualifiedName(op.Package, op.Receiver, op.FuncName)] = op
		index[op.FuncName] = op
	}
	return index
}

// Encode renders the document as indented JSON or YAML.
func (s *OpenAPISpec) Encode(w io.Writer, format string) error {
	return encodeDocument(w, format, s)
}

// RawDocument is a loosely parsed OpenAPI document. Enrichment edits
// operation summaries and descriptions in place and leaves everything else
// exactly as loaded, so documents produced by other tools round-trip without
// this tool having to understand their schemas.
type RawDocument struct {
	root     map[string]interface{}
	format   string
	enriched map[string]bool
}

// LoadDocument reads an OpenAPI document, choosing JSON or YAML from the
// file extension.
func LoadDocument(path string) (*RawDocument, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read document")
	}

	format := FormatForPath(path)
	root := map[string]interface{}{}
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	default:
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	}
	return &RawDocument{root: root, format: format, enriched: map[string]bool{}}, nil
}

// Format reports the format the document was loaded from.
func (d *RawDocument) Format() string {
	return d.format
}

// AttachOperationDocs implements opdoc.Attacher. Every operation whose
// operationId matches id gets the summary and description; the qualified
// name matches first, the bare function name is the fallback. Empty incoming
// values never clear something a previous tool already wrote.
func (d *RawDocument) AttachOperationDocs(id, summary, description string) {
	paths, ok := d.root["paths"].(map[string]interface{})
	if !ok {
		return
	}

	for _, rawItem := range paths {
		item, ok := rawItem.(map[string]interface{})
		if !ok {
			continue
		}
		for method, rawOp := range item {
			if !isOperationKey(method) {
				continue
			}
			op, ok := rawOp.(map[string]interface{})
			if !ok {
				continue
			}
			opID, _ := op["operationId"].(string)
			if opID == "" || !matchesOperationID(opID, id) {
				continue
			}
			if summary != "" {
				op["summary"] = summary
			}
			if description != "" {
				op["description"] = description
			}
			d.enriched[id] = true
		}
	}
}

// EnrichedCount reports how many distinct operation IDs matched an operation
// in the document.
func (d *RawDocument) EnrichedCount() int {
	return len(d.enriched)
}

// Encode renders the document in the requested format, defaulting to the
// format it was loaded from.
func (d *RawDocument) Encode(w io.Writer, format string) error {
	if format == "" {
		format = d.format
	}
	return encodeDocument(w, format, d.root)
}

var _ opdoc.Attacher = (*RawDocument)(nil)

func matchesOperationID(opID, id string) bool {
	if opID == id {
		return true
	}
	if i := strings.LastIndex(id, "."); i >= 0 && opID == id[i+1:] {
		return true
	}
	return false
}

func isOperationKey(key string) bool {
	switch key {
	case "get", "put", "post", "delete", "options", "head", "patch", "trace":
		return true
	default:
		return false
	}
}

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func encodeDocument(w io.Writer, format string, v interface{}) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Errorf("unsupported format: %s", format)
	}
}
