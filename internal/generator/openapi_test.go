package generator

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/opdoc-labs/opdoc/pkg/opdoc"
)

func TestBuildSpec(t *testing.T) {
	routes := []Route{
		{Method: "GET", Path: "/users/{id}", HandlerName: "handlers.GetUser"},
		{Method: "POST", Path: "/users", HandlerName: "CreateUser"},
		{Method: "", Path: "/reports", HandlerName: "handlers.ListReports"},
		{Method: "GET", Path: "/undocumented", HandlerName: "Mystery"},
	}
	ops := []ExtractedOperation{
		{
			ID:          "handlers.GetUser",
			Package:     "handlers",
			FuncName:    "GetUser",
			Summary:     "Get a user",
			Description: "Looks the user up by ID.",
			Tags:        []string{"users"},
		},
		{
			ID:       "handlers.CreateUser",
			Package:  "handlers",
			FuncName: "CreateUser",
			Summary:  "Create a user",
			Tags:     []string{"users", "admin"},
		},
		{
			ID:         "handlers.ListReports",
			Package:    "handlers",
			FuncName:   "ListReports",
			Summary:    "List reports",
			Deprecated: true,
		},
	}

	spec := BuildSpec(routes, ops, BuildOptions{Title: "Test API", Version: "1.2.3"})

	assert.Equal(t, "3.1.0", spec.OpenAPI)
	assert.Equal(t, "Test API", spec.Info.Title)
	assert.Equal(t, "1.2.3", spec.Info.Version)
	require.Len(t, spec.Paths, 4)

	getUser := spec.Paths["/users/{id}"].Get
	require.NotNil(t, getUser)
	assert.Equal(t, "handlers.GetUser", getUser.OperationID)
	assert.Equal(t, "Get a user", getUser.Summary)
	assert.Equal(t, "Looks the user up by ID.", getUser.Description)
	assert.Equal(t, []string{"users"}, getUser.Tags)
	require.Len(t, getUser.Parameters, 1)
	assert.Equal(t, "id", getUser.Parameters[0].Name)
	assert.Equal(t, "path", getUser.Parameters[0].In)
	assert.True(t, getUser.Parameters[0].Required)
	require.Contains(t, getUser.Responses, "200")

	// Bare handler names still match extracted operations.
	createUser := spec.Paths["/users"].Post
	require.NotNil(t, createUser)
	assert.Equal(t, "handlers.CreateUser", createUser.OperationID)
	assert.Equal(t, "Create a user", createUser.Summary)

	// Method-less routes fall back to name inference.
	listReports := spec.Paths["/reports"].Get
	require.NotNil(t, listReports)
	assert.True(t, listReports.Deprecated)

	// Routes without extraction still appear, just undocumented.
	mystery := spec.Paths["/undocumented"].Get
	require.NotNil(t, mystery)
	assert.Equal(t, "Mystery", mystery.OperationID)
	assert.Empty(t, mystery.Summary)

	assert.Equal(t, []Tag{{Name: "admin"}, {Name: "users"}}, spec.Tags)
}

func TestOpenAPISpecEncodeJSON(t *testing.T) {
	spec := BuildSpec(
		[]Route{{Method: "GET", Path: "/ping", HandlerName: "Ping"}},
		[]ExtractedOperation{{ID: "health.Ping", Package: "health", FuncName: "Ping", Summary: "Ping"}},
		BuildOptions{Title: "API", Version: "0.1.0"},
	)

	var buf bytes.Buffer
	require.NoError(t, spec.Encode(&buf, "json"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "3.1.0", decoded["openapi"])

	paths := decoded["paths"].(map[string]interface{})
	ping := paths["/ping"].(map[string]interface{})["get"].(map[string]interface{})
	assert.Equal(t, "health.Ping", ping["operationId"])
	assert.Equal(t, "Ping", ping["summary"])
}

func TestOpenAPISpecEncodeYAML(t *testing.T) {
	spec := BuildSpec(
		[]Route{{Method: "GET", Path: "/ping", HandlerName: "Ping"}},
		[]ExtractedOperation{{ID: "health.Ping", Package: "health", FuncName: "Ping", Summary: "Ping"}},
		BuildOptions{Title: "API", Version: "0.1.0"},
	)

	var buf bytes.Buffer
	require.NoError(t, spec.Encode(&buf, "yaml"))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	paths := decoded["paths"].(map[string]interface{})
	ping := paths["/ping"].(map[string]interface{})["get"].(map[string]interface{})
	assert.Equal(t, "health.Ping", ping["operationId"])
}

const sampleDocument = `{
  "openapi": "3.1.0",
  "info": {"title": "Widgets", "version": "2.0.0"},
  "x-vendor": {"keep": true},
  "paths": {
    "/widgets/{id}": {
      "get": {
        "operationId": "GetWidget",
        "summary": "placeholder",
        "responses": {"200": {"description": "ok"}}
      },
      "delete": {
        "operationId": "widgets.DeleteWidget",
        "responses": {"204": {"description": "gone"}}
      }
    },
    "/widgets": {
      "post": {
        "operationId": "CreateWidget",
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func TestRawDocumentEnrichment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "json", doc.Format())

	reg := opdoc.NewRegistry()
	reg.Register("widgets.GetWidget", opdoc.OperationDoc{
		Summary:     "Get a widget",
		Description: "Fetch one widget by ID.",
	})
	reg.Register("widgets.DeleteWidget", opdoc.OperationDoc{Summary: "Delete a widget"})
	reg.Register("widgets.Unknown", opdoc.OperationDoc{Summary: "No such operation"})
	reg.Apply(doc)

	assert.Equal(t, 2, doc.EnrichedCount())

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf, ""))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	// Vendor extensions and untouched operations survive the round trip.
	assert.Equal(t, map[string]interface{}{"keep": true}, decoded["x-vendor"])

	paths := decoded["paths"].(map[string]interface{})
	widget := paths["/widgets/{id}"].(map[string]interface{})

	// Bare operationId matched via the qualified registry ID.
	get := widget["get"].(map[string]interface{})
	assert.Equal(t, "Get a widget", get["summary"])
	assert.Equal(t, "Fetch one widget by ID.", get["description"])

	del := widget["delete"].(map[string]interface{})
	assert.Equal(t, "Delete a widget", del["summary"])
	_, hasDescription := del["description"]
	assert.False(t, hasDescription, "empty description must not be written")

	post := paths["/widgets"].(map[string]interface{})["post"].(map[string]interface{})
	_, hasSummary := post["summary"]
	assert.False(t, hasSummary, "unmatched operations stay untouched")
}

func TestRawDocumentYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.yaml")
	src := `openapi: 3.1.0
info:
  title: Widgets
  version: 2.0.0
paths:
  /widgets:
    get:
      operationId: widgets.ListWidgets
      responses:
        "200":
          description: ok
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", doc.Format())

	doc.AttachOperationDocs("widgets.ListWidgets", "List widgets", "Everything, unpaged.")
	assert.Equal(t, 1, doc.EnrichedCount())

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf, ""))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	get := decoded["paths"].(map[string]interface{})["/widgets"].(map[string]interface{})["get"].(map[string]interface{})
	assert.Equal(t, "List widgets", get["summary"])
	assert.Equal(t, "Everything, unpaged.", get["description"])
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, "yaml", FormatForPath("spec.yaml"))
	assert.Equal(t, "yaml", FormatForPath("spec.YML"))
	assert.Equal(t, "json", FormatForPath("spec.json"))
	assert.Equal(t, "json", FormatForPath("no-extension"))
}
