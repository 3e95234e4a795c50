package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	env "github.com/caarlos0/env/v11"
)

func TestServeConfigFromEnv(t *testing.T) {
	t.Setenv("OPDOC_ADDR", ":9999")
	t.Setenv("OPDOC_SPEC_PATH", "api/openapi.yaml")

	var config ServeConfig
	if err := env.ParseWithOptions(&config, env.Options{Prefix: envPrefix}); err != nil {
		t.Fatalf("ParseWithOptions() error = %v", err)
	}

	if config.Addr != ":9999" {
		t.Errorf("Addr: got %s, want :9999", config.Addr)
	}
	if config.SpecPath != "api/openapi.yaml" {
		t.Errorf("SpecPath: got %s, want api/openapi.yaml", config.SpecPath)
	}
	if config.DocsPath != "/docs/" {
		t.Errorf("DocsPath: got %s, want the /docs/ default", config.DocsPath)
	}
}

func TestServeMuxRoutes(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "openapi.json")
	if err := os.WriteFile(specPath, []byte(`{"openapi":"3.1.0"}`), 0644); err != nil {
		t.Fatal(err)
	}

	mux := newServeMux(ServeConfig{SpecPath: specPath, DocsPath: "/docs/"})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/openapi.json")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /openapi.json status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
	if !strings.Contains(string(body), "3.1.0") {
		t.Errorf("spec body = %s", body)
	}

	resp, err = http.Get(srv.URL + "/docs/index.html")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /docs/index.html status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "swagger-ui") {
		t.Error("docs page does not look like Swagger UI")
	}

	// Root redirects into the docs UI.
	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d after redirects", resp.StatusCode)
	}
}

func TestServeMuxYAMLSpec(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "openapi.yaml")
	if err := os.WriteFile(specPath, []byte("openapi: 3.1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	mux := newServeMux(ServeConfig{SpecPath: specPath, DocsPath: "/docs/"})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /openapi.yaml status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %s, want application/yaml", ct)
	}
}

func TestRunServeMissingSpec(t *testing.T) {
	err := RunServe(context.Background(), io.Discard, ServeConfig{
		Addr:     ":0",
		SpecPath: filepath.Join(t.TempDir(), "missing.json"),
		DocsPath: "/docs/",
	})
	if err == nil {
		t.Fatal("expected an error for a missing spec file")
	}
}
