package openapi

import (
	"bytes"
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSpecReturnsCopyAndMatchesFile(t *testing.T) {
	want, err := os.ReadFile("medshare.yaml")
	if err != nil {
		t.Fatalf("read medshare.yaml: %v", err)
	}
	spec := Spec()
	if !bytes.Equal(spec, want) {
		t.Fatal("Spec does not match medshare.yaml")
	}
	spec[0] ^= 0xFF
	if !bytes.Equal(Spec(), want) {
		t.Fatal("Spec mutation leaked into embedded content")
	}
}

func TestSpecIsValidYAML(t *testing.T) {
	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(APISpec, &doc); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.OpenAPI == "" || len(doc.Paths) == 0 {
		t.Fatalf("expected openapi version and paths, got %+v", doc)
	}
	for path, ops := range doc.Paths {
		if len(ops) == 0 {
			t.Fatalf("path %s has no operations", path)
		}
	}
}
