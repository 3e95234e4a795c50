package generator

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"golang.org/x/tools/imports"
)

// GeneratedFileName is the per-package output file written in default mode.
const GeneratedFileName = "opdoc_gen.go"

// generatedFileSuffix names colocated outputs after their source file.
const generatedFileSuffix = "_opdoc_gen.go"

// registrationTemplate renders one generated file. Summaries and
// descriptions are emitted as plain string literals so the registered pair
// is baked into the build; gofmt alignment is left to the formatter.
const registrationTemplate = `// Code generated by opdoc. DO NOT EDIT.

package {{.Package}}

import "github.com/opdoc-labs/opdoc/pkg/opdoc"

func init() {
{{- range .Operations}}
	opdoc.Register({{printf "%q" .ID}}, opdoc.OperationDoc{
		Summary: {{printf "%q" .Summary}},
		Description: {{printf "%q" .Description}},
{{- if .Tags}}
		Tags: []string{ {{- range $i, $t := .Tags}}{{if $i}}, {{end}}{{printf "%q" $t}}{{end}}},
{{- end}}
{{- if .Deprecated}}
		Deprecated: true,
{{- end}}
	})
{{- end}}
}
`

var registrationTmpl = template.Must(template.New("registration").Parse(registrationTemplate))

// Emitter renders registration files for extracted operations.
type Emitter struct {
	colocated bool
}

// NewEmitter creates an emitter. With colocated set, one file is written
// next to each annotated source file; otherwise each package directory gets
// a single opdoc_gen.go.
func NewEmitter(colocated bool) *Emitter {
	return &Emitter{colocated: colocated}
}

// GeneratedFile is one rendered output file.
type GeneratedFile struct {
	Path       string
	Package    string
	Content    []byte
	Operations int
}

// Plan renders a generated file for every output path the extracted
// operations map to, in deterministic order. Apart from a .debug dump when
// formatting fails, nothing is written to disk.
func (e *Emitter) Plan(ops []ExtractedOperation) ([]GeneratedFile, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	groups := map[string][]ExtractedOperation{}
	packages := map[string]string{}
	for _, op := range ops {
		path := e.outputPath(op)
		groups[path] = append(groups[path], op)
		packages[path] = op.Package
	}

	paths := make([]string, 0, len(groups))
	for path := range groups {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]GeneratedFile, 0, len(paths))
	for _, path := range paths {
		group := groups[path]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		content, err := e.render(packages[path], group)
		if err != nil {
			return nil, errors.Wrapf(err, "render %s", path)
		}

		formatted, err := imports.Process(path, content, nil)
		if err != nil {
			// Keep the raw render around for debugging.
			_ = writeFile(path+".debug", content)
			return nil, errors.Wrapf(err, "format generated code for %s", path)
		}

		files = append(files, GeneratedFile{
			Path:       path,
			Package:    packages[path],
			Content:    formatted,
			Operations: len(group),
		})
	}
	return files, nil
}

// Write stores every planned file on disk, creating directories as needed.
// Existing generated files are replaced; no other file is ever touched.
func (e *Emitter) Write(files []GeneratedFile) error {
	for _, f := range files {
		if err := writeFile(f.Path, f.Content); err != nil {
			return errors.Wrapf(err, "write %s", f.Path)
		}
	}
	return nil
}

func (e *Emitter) render(pkg string, ops []ExtractedOperation) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Package    string
		Operations []ExtractedOperation
	}{Package: pkg, Operations: ops}

	if err := registrationTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Emitter) outputPath(op ExtractedOperation) string {
	if e.colocated {
		return strings.TrimSuffix(op.SourceFile, ".go") + generatedFileSuffix
	}
	return filepath.Join(filepath.Dir(op.SourceFile), GeneratedFileName)
}

// writeFile writes content to a file, creating directories if necessary.
func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}
	return os.WriteFile(path, content, 0644)
}
