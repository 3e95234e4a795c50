package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunListTable(t *testing.T) {
	dir := writeTestSource(t)

	var buf bytes.Buffer
	config := &ListConfig{Dirs: []string{dir}, Out: &buf}
	if err := RunList(config); err != nil {
		t.Fatalf("RunList() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "OPERATION") {
		t.Errorf("missing table header: %s", out)
	}
	if !strings.Contains(out, "handlers.GetUser") {
		t.Errorf("missing operation ID: %s", out)
	}
	if !strings.Contains(out, "Get a user.") {
		t.Errorf("missing summary: %s", out)
	}
	if strings.Contains(out, "as JSON.") {
		t.Errorf("table view must not include the description: %s", out)
	}
}

func TestRunListWide(t *testing.T) {
	dir := writeTestSource(t)

	var buf bytes.Buffer
	config := &ListConfig{Dirs: []string{dir}, Wide: true, Out: &buf}
	if err := RunList(config); err != nil {
		t.Fatalf("RunList() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "handlers.GetUser") {
		t.Errorf("missing operation ID: %s", out)
	}
	if !strings.Contains(out, "as JSON.") {
		t.Errorf("wide view must include the description: %s", out)
	}
	if !strings.Contains(out, "handlers.go:") {
		t.Errorf("missing source location: %s", out)
	}
}

func TestRunListEmpty(t *testing.T) {
	var buf bytes.Buffer
	config := &ListConfig{Dirs: []string{t.TempDir()}, Out: &buf}
	if err := RunList(config); err != nil {
		t.Fatalf("RunList() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no annotated handlers found") {
		t.Errorf("output: %s", buf.String())
	}
}
