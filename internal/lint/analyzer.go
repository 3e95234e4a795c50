// Package lint provides a static checker for opdoc:operation directives.
package lint

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const directive = "opdoc:operation"

// Analyzer reports misused opdoc:operation directives: directives outside
// function doc comments, malformed arguments, annotated handlers without
// documentation, and duplicate operation IDs.
var Analyzer = &analysis.Analyzer{
	Name: "opdoclint",
	Doc:  "checks opdoc:operation directives for correct placement and arguments",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	seen := map[string]*ast.FuncDecl{}
	for _, file := range pass.Files {
		checkFile(pass, file, seen)
	}
	return nil, nil
}

func checkFile(pass *analysis.Pass, file *ast.File, seen map[string]*ast.FuncDecl) {
	funcDocs := map[*ast.CommentGroup]*ast.FuncDecl{}
	declDocs := map[*ast.CommentGroup]ast.Decl{}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc != nil {
				funcDocs[d.Doc] = d
			}
		case *ast.GenDecl:
			if d.Doc != nil {
				declDocs[d.Doc] = d
			}
		}
	}

	for _, group := range file.Comments {
		for _, c := range group.List {
			rest, ok := directiveArgs(c.Text)
			if !ok {
				continue
			}
			fd, attached := funcDocs[group]
			if !attached {
				if decl, onDecl := declDocs[group]; onDecl {
					pass.Reportf(decl.Pos(), "%s directive must be part of a function doc comment", directive)
				} else {
					pass.Reportf(c.Pos(), "%s directive must be part of a function doc comment", directive)
				}
				continue
			}
			checkArgs(pass, fd, rest)
			if !hasDocText(fd.Doc) {
				pass.Reportf(fd.Pos(), "%s has an %s directive but no documentation", fd.Name.Name, directive)
			}
			checkID(pass, file.Name.Name, fd, rest, seen)
		}
	}
}

func checkArgs(pass *analysis.Pass, fd *ast.FuncDecl, rest string) {
	for _, field := range strings.Fields(rest) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			pass.Reportf(fd.Pos(), "malformed %s argument %q: expected key=value", directive, field)
			continue
		}
		switch key {
		case "id":
			if value == "" {
				pass.Reportf(fd.Pos(), "empty id argument in %s directive", directive)
			}
		case "tags":
			if value == "" {
				pass.Reportf(fd.Pos(), "empty tags argument in %s directive", directive)
			}
		default:
			pass.Reportf(fd.Pos(), "unknown %s argument %q", directive, key)
		}
	}
}

func checkID(pass *analysis.Pass, pkg string, fd *ast.FuncDecl, rest string, seen map[string]*ast.FuncDecl) {
	id := explicitID(rest)
	if id == "" {
		id = defaultID(pkg, fd)
	}
	if prev, dup := seen[id]; dup {
		pass.Reportf(fd.Pos(), "duplicate operation ID %q also used at %s", id, pass.Fset.Position(prev.Pos()))
		return
	}
	seen[id] = fd
}

// directiveArgs reports whether a comment is the opdoc:operation directive
// and returns its argument string. A directive has no space between the
// markers and the name, so "// opdoc:operation" is ordinary prose.
func directiveArgs(text string) (rest string, ok bool) {
	body, found := strings.CutPrefix(text, "//"+directive)
	if !found {
		return "", false
	}
	if body == "" {
		return "", true
	}
	if body[0] != ' ' && body[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// isAnyDirective matches the go/ast notion of a comment directive: //name:…
// with a name of lowercase letters and digits.
func isAnyDirective(text string) bool {
	body, found := strings.CutPrefix(text, "//")
	if !found {
		return false
	}
	colon := strings.Index(body, ":")
	if colon <= 0 {
		return false
	}
	for _, r := range body[:colon] {
		if !('a' <= r && r <= 'z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

// hasDocText reports whether the doc comment contains anything besides
// directives and blank lines.
func hasDocText(doc *ast.CommentGroup) bool {
	for _, c := range doc.List {
		if isAnyDirective(c.Text) {
			continue
		}
		text := c.Text
		switch {
		case strings.HasPrefix(text, "//"):
			text = strings.TrimPrefix(text, "//")
		case strings.HasPrefix(text, "/*"):
			text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		}
		if strings.TrimSpace(text) != "" {
			return true
		}
	}
	return false
}

func explicitID(rest string) string {
	for _, field := range strings.Fields(rest) {
		if value, ok := strings.CutPrefix(field, "id="); ok {
			return value
		}
	}
	return ""
}

func defaultID(pkg string, fd *ast.FuncDecl) string {
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		if recv := baseTypeName(fd.Recv.List[0].Type); recv != "" {
			return pkg + "." + recv + "." + fd.Name.Name
		}
	}
	return pkg + "." + fd.Name.Name
}

func baseTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return baseTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return baseTypeName(t.X)
	}
	return ""
}
