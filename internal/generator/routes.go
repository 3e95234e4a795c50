package generator

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// RouteScanner detects route registrations in Go source files. It recognizes
// three registration shapes:
//
//   - standard library: mux.HandleFunc("GET /users/{id}", handler), where the
//     method may be part of the pattern
//   - method-call routers: r.GET("/users/:id", handler) and r.Get(...), the
//     shape shared by gin, echo, chi and fiber
//   - gorilla: r.HandleFunc("/users/{id}", handler).Methods("GET")
//
// Paths are normalized to the {name} parameter form.
type RouteScanner struct {
	fileSet *token.FileSet
}

// NewRouteScanner creates a new route scanner.
func NewRouteScanner() *RouteScanner {
	return &RouteScanner{fileSet: token.NewFileSet()}
}

// ScanPaths scans every given path; directories are walked recursively for
// Go files, other entries are treated as single files.
func (s *RouteScanner) ScanPaths(paths []string) ([]Route, error) {
	var routes []Route
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", path)
		}
		if !info.IsDir() {
			fileRoutes, err := s.ScanFile(path)
			if err != nil {
				return nil, err
			}
			routes = append(routes, fileRoutes...)
			continue
		}

		err = filepath.WalkDir(path, func(p string, de os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if de.IsDir() {
				if skipDir(de.Name()) && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(de.Name(), ".go") || strings.HasSuffix(de.Name(), "_test.go") {
				return nil
			}
			fileRoutes, err := s.ScanFile(p)
			if err != nil {
				// Skip files that fail to parse
				return nil
			}
			routes = append(routes, fileRoutes...)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", path)
		}
	}
	return mergeRoutes(routes), nil
}

// ScanFile returns every route registration found in a single file.
func (s *RouteScanner) ScanFile(filename string) ([]Route, error) {
	file, err := parser.ParseFile(s.fileSet, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filename)
	}

	var routes []Route
	ast.Inspect(file, func(node ast.Node) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}

		route := s.detectGorillaRoute(call)
		if route == nil {
			route = s.detectHandleFunc(call)
		}
		if route == nil {
			route = s.detectMethodCall(call)
		}
		if route != nil {
			route.SourceFile = filename
			route.Line = s.fileSet.Position(call.Pos()).Line
			routes = append(routes, *route)
		}
		return true
	})
	return mergeRoutes(routes), nil
}

// detectHandleFunc handles http.HandleFunc and mux.HandleFunc registrations.
// Since Go 1.22 the pattern may carry the method, as in "POST /login".
func (s *RouteScanner) detectHandleFunc(call *ast.CallExpr) *Route {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "HandleFunc" || len(call.Args) < 2 {
		return nil
	}

	pattern := extractStringLiteral(call.Args[0])
	handler := extractHandlerName(call.Args[1])
	if pattern == "" || handler == "" {
		return nil
	}

	method := ""
	path := pattern
	if parts := strings.SplitN(pattern, " ", 2); len(parts) == 2 && isHTTPMethod(parts[0]) {
		method = strings.ToUpper(parts[0])
		path = parts[1]
	}

	// A method-less registration keeps Method empty; callers infer it from
	// the handler name.
	return &Route{
		Method:      method,
		Path:        normalizePath(path),
		HandlerName: handler,
	}
}

// detectMethodCall handles r.GET("/path", handler) style registrations in
// both the upper-case (gin, echo) and title-case (chi, fiber) spellings.
func (s *RouteScanner) detectMethodCall(call *ast.CallExpr) *Route {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || len(call.Args) < 2 {
		return nil
	}

	// Routers spell methods GET (gin, echo) or Get (chi, fiber). Anything
	// else, including lower-case calls, is not a route registration.
	name := sel.Sel.Name
	if !isHTTPMethod(name) {
		return nil
	}
	if name != strings.ToUpper(name) && !isCapitalized(name) {
		return nil
	}

	path := extractStringLiteral(call.Args[0])
	handler := extractHandlerName(call.Args[1])
	if path == "" || handler == "" {
		return nil
	}

	return &Route{
		Method:      strings.ToUpper(name),
		Path:        normalizePath(path),
		HandlerName: handler,
	}
}

// detectGorillaRoute handles router.HandleFunc("/path", handler).Methods("GET").
func (s *RouteScanner) detectGorillaRoute(call *ast.CallExpr) *Route {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Methods" || len(call.Args) < 1 {
		return nil
	}

	method := extractStringLiteral(call.Args[0])
	if method == "" || !isHTTPMethod(method) {
		return nil
	}

	handleCall, ok := sel.X.(*ast.CallExpr)
	if !ok {
		return nil
	}
	handleSel, ok := handleCall.Fun.(*ast.SelectorExpr)
	if !ok || handleSel.Sel.Name != "HandleFunc" || len(handleCall.Args) < 2 {
		return nil
	}

	path := extractStringLiteral(handleCall.Args[0])
	handler := extractHandlerName(handleCall.Args[1])
	if path == "" || handler == "" {
		return nil
	}

	return &Route{
		Method:      strings.ToUpper(method),
		Path:        normalizePath(path),
		HandlerName: handler,
	}
}

// mergeRoutes drops method-less duplicates left behind by chained
// registrations such as HandleFunc(...).Methods(...), where the inner and the
// outer call both match a detector.
func mergeRoutes(routes []Route) []Route {
	merged := make([]Route, 0, len(routes))
	index := map[string]int{}
	for _, route := range routes {
		key := route.Path + " " + route.HandlerName
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, route)
			continue
		}
		if merged[i].Method == "" && route.Method != "" {
			merged[i] = route
		}
	}
	return merged
}

// Helper functions

func isHTTPMethod(method string) bool {
	switch strings.ToUpper(method) {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "CONNECT", "TRACE":
		return true
	default:
		return false
	}
}

func isCapitalized(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	return s[1:] == strings.ToLower(s[1:])
}

func extractStringLiteral(expr ast.Expr) string {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return ""
	}
	return strings.Trim(lit.Value, `"`)
}

func extractHandlerName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if pkg, ok := e.X.(*ast.Ident); ok {
			return pkg.Name + "." + e.Sel.Name
		}
	case *ast.FuncLit:
		// Anonymous handlers have nothing to attach documentation to.
		return ""
	}
	return ""
}

var (
	colonParamRe       = regexp.MustCompile(`:(\w+)`)
	constrainedParamRe = regexp.MustCompile(`\{(\w+):[^}]*\}`)
	pathParamRe        = regexp.MustCompile(`\{(\w+)\}`)
)

// normalizePath rewrites framework-specific path parameters ({id:regexp} and
// :id) to the OpenAPI {id} form. Constrained parameters go first so their
// inner colon is not mistaken for a :param marker.
func normalizePath(path string) string {
	path = constrainedParamRe.ReplaceAllString(path, "{$1}")
	return colonParamRe.ReplaceAllString(path, "{$1}")
}

// ExtractPathParameters extracts parameter names from an OpenAPI-style path.
func ExtractPathParameters(path string) []string {
	var params []string
	for _, match := range pathParamRe.FindAllStringSubmatch(path, -1) {
		params = append(params, match[1])
	}
	return params
}

// InferMethodFromHandler infers the HTTP method from a handler name when the
// registration itself does not carry one.
func InferMethodFromHandler(handlerName string) string {
	name := strings.ToLower(handlerName)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimPrefix(name, "handle")
	name = strings.TrimPrefix(name, "handler")

	switch {
	case strings.HasPrefix(name, "get") || strings.HasPrefix(name, "list") || strings.HasPrefix(name, "fetch"):
		return "GET"
	case strings.HasPrefix(name, "create") || strings.HasPrefix(name, "post") || strings.HasPrefix(name, "add"):
		return "POST"
	case strings.HasPrefix(name, "update") || strings.HasPrefix(name, "put") || strings.HasPrefix(name, "edit"):
		return "PUT"
	case strings.HasPrefix(name, "patch") || strings.HasPrefix(name, "modify"):
		return "PATCH"
	case strings.HasPrefix(name, "delete") || strings.HasPrefix(name, "remove"):
		return "DELETE"
	default:
		return "POST"
	}
}
