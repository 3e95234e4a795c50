package generator

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/opdoc-labs/opdoc/pkg/opdoc"
)

// OperationDirective marks a handler function for documentation extraction.
// It is written as a comment directive inside the function's doc comment:
//
//	// GetUser returns a single user.
//	//
//	// The lookup is by numeric ID only.
//	//opdoc:operation tags=users
//	func GetUser(w http.ResponseWriter, r *http.Request) { ... }
//
// Directive arguments are optional key=value pairs; "id" overrides the
// operation ID and "tags" adds a comma-separated tag list.
const OperationDirective = "opdoc:operation"

// Extractor finds annotated handler functions and collects their doc
// comments.
type Extractor struct {
	fileSet *token.FileSet
}

// NewExtractor allocates a new instance.
func NewExtractor() *Extractor {
	return &Extractor{fileSet: token.NewFileSet()}
}

// ExtractDirectories walks the provided directories recursively and extracts
// every annotated handler it finds, ordered by operation ID. Vendor trees,
// testdata and hidden or underscore-prefixed directories are skipped, and so
// are files that fail to parse. A directive placed outside a function doc
// comment is an error.
func (e *Extractor) ExtractDirectories(dirs []string) ([]ExtractedOperation, error) {
	var ops []ExtractedOperation
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, de os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if de.IsDir() {
				if skipDir(de.Name()) && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(de.Name(), ".go") || strings.HasSuffix(de.Name(), "_test.go") {
				return nil
			}

			file, err := parser.ParseFile(e.fileSet, path, nil, parser.ParseComments)
			if err != nil {
				// Skip files that fail to parse
				return nil
			}
			fileOps, err := e.extractFromFile(path, file)
			if err != nil {
				return err
			}
			ops = append(ops, fileOps...)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", dir)
		}
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return ops, nil
}

// ExtractFile extracts the annotated handlers of a single Go source file.
func (e *Extractor) ExtractFile(path string) ([]ExtractedOperation, error) {
	file, err := parser.ParseFile(e.fileSet, path, nil, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return e.extractFromFile(path, file)
}

func (e *Extractor) extractFromFile(path string, file *ast.File) ([]ExtractedOperation, error) {
	if err := e.checkDirectivePlacement(file); err != nil {
		return nil, err
	}

	pkg := file.Name.Name
	var ops []ExtractedOperation
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Doc == nil {
			continue
		}
		if op, ok := e.extractFuncDecl(path, pkg, fd); ok {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// checkDirectivePlacement rejects files where the operation directive sits
// anywhere other than a function doc comment, mirroring how an annotation on
// the wrong declaration kind fails at build time.
func (e *Extractor) checkDirectivePlacement(file *ast.File) error {
	funcDocs := map[*ast.CommentGroup]bool{}
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Doc != nil {
			funcDocs[fd.Doc] = true
		}
	}

	for _, cg := range file.Comments {
		if funcDocs[cg] {
			continue
		}
		for _, c := range cg.List {
			name, _, ok := parseDirective(c.Text)
			if ok && name == OperationDirective {
				pos := e.fileSet.Position(c.Pos())
				return errors.Errorf("%s:%d: %s must be part of a function doc comment", pos.Filename, pos.Line, OperationDirective)
			}
		}
	}
	return nil
}

func (e *Extractor) extractFuncDecl(path, pkg string, fd *ast.FuncDecl) (ExtractedOperation, bool) {
	var (
		annotated bool
		args      directiveArgs
		raw       []string
	)
	for _, c := range fd.Doc.List {
		if name, rest, ok := parseDirective(c.Text); ok {
			if name == OperationDirective {
				annotated = true
				args = parseDirectiveArgs(rest)
			}
			// Directives are never documentation text.
			continue
		}
		raw = append(raw, commentLines(c.Text)...)
	}
	if !annotated {
		return ExtractedOperation{}, false
	}

	summary, description := opdoc.Split(raw)
	pos := e.fileSet.Position(fd.Pos())

	op := ExtractedOperation{
		ID:          args.id,
		Package:     pkg,
		FuncName:    fd.Name.Name,
		Receiver:    receiverName(fd),
		RawLines:    raw,
		Summary:     summary,
		Description: description,
		Tags:        args.tags,
		Deprecated:  markedDeprecated(summary, description),
		SourceFile:  path,
		Line:        pos.Line,
	}
	if op.ID == "" {
		op.ID = qualifiedName(pkg, op.Receiver, fd.Name.Name)
	}
	return op, true
}

type directiveArgs struct {
	id   string
	tags []string
}

// parseDirective splits a line comment into directive name and argument
// text. A directive is the //tool:name form with no space after the markers,
// like go:generate or opdoc:operation.
func parseDirective(text string) (name, rest string, ok bool) {
	if !strings.HasPrefix(text, "//") {
		return "", "", false
	}
	body := text[2:]
	if !isDirective(body) {
		return "", "", false
	}
	name = body
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		name, rest = body[:i], strings.TrimSpace(body[i:])
	}
	return name, rest, true
}

// isDirective reports whether the comment body (the text after "//") follows
// the directive convention: lowercase word, colon, no space before the
// payload.
func isDirective(body string) bool {
	colon := strings.Index(body, ":")
	if colon <= 0 || colon+1 >= len(body) {
		return false
	}
	for i := 0; i <= colon+1; i++ {
		if i == colon {
			continue
		}
		b := body[i]
		if !('a' <= b && b <= 'z' || '0' <= b && b <= '9') {
			return false
		}
	}
	return true
}

func parseDirectiveArgs(rest string) directiveArgs {
	var args directiveArgs
	for _, field := range strings.Fields(rest) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "id":
			args.id = value
		case "tags":
			for _, tag := range strings.Split(value, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					args.tags = append(args.tags, tag)
				}
			}
		}
		// Unknown keys are ignored so the directive can grow new arguments
		// without breaking older binaries.
	}
	return args
}

// commentLines strips the markers from one comment and returns its text
// lines. Exactly one leading space after the marker is dropped; any deeper
// indentation belongs to the text and survives.
func commentLines(text string) []string {
	if strings.HasPrefix(text, "//") {
		return []string{stripOneSpace(text[2:])}
	}

	body := strings.TrimPrefix(text, "/*")
	body = strings.TrimSuffix(body, "*/")
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, stripOneSpace(line))
	}
	return out
}

func stripOneSpace(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}

// markedDeprecated reports whether any paragraph follows the standard
// "Deprecated:" comment convention.
func markedDeprecated(summary, description string) bool {
	if strings.HasPrefix(summary, "Deprecated:") {
		return true
	}
	for _, para := range strings.Split(description, "\n\n") {
		if strings.HasPrefix(para, "Deprecated:") {
			return true
		}
	}
	return false
}

func receiverName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}
	return baseTypeName(fd.Recv.List[0].Type)
}

// baseTypeName returns the bare type identifier behind pointers and type
// parameters.
func baseTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return baseTypeName(t.X)
	case *ast.IndexExpr:
		return baseTypeName(t.X)
	case *ast.IndexListExpr:
		return baseTypeName(t.X)
	}
	return ""
}

func qualifiedName(pkg, recv, fn string) string {
	if recv != "" {
		return pkg + "." + recv + "." + fn
	}
	return pkg + "." + fn
}

func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
