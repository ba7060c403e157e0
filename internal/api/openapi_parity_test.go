package api

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

type openAPIDocument struct {
	Paths map[string]map[string]any `yaml:"paths"`
}

func TestOpenAPIContainsImplementedRoutes(t *testing.T) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	content, err := os.ReadFile(filepath.Join(repoRoot, "api", "openapi.yaml"))
	if err != nil {
		t.Fatalf("read openapi file error = %v", err)
	}

	var doc openAPIDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		t.Fatalf("parse openapi file error = %v", err)
	}

	required := map[string][]string{
		"/v1/health":                        {"get"},
		"/v1/ready":                         {"get"},
		"/v1/metrics":                       {"get"},
		"/v1/menu":                          {"get"},
		"/v1/menu/schema":                   {"get"},
		"/v1/chat/config":                   {"get"},
		"/v1/chat/sessions":                 {"post"},
		"/v1/chat/sessions/{session}":       {"get", "delete"},
		"/v1/chat/sessions/{session}/ask":   {"post"},
		"/v1/chat/sessions/{session}/clear": {"post"},
		"/v1/admin/catalog/reload":          {"post"},
	}
	for path, methods := range required {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("openapi missing path %s", path)
		}
		for _, method := range methods {
			if _, ok := ops[method]; !ok {
				t.Fatalf("openapi path %s missing %s operation", path, method)
			}
		}
	}
}
