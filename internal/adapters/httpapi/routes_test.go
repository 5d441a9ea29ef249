package httpapi

import (
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"medshare/docs/openapi"
	"medshare/internal/core"
	"medshare/internal/infra/persistence/memory"
)

func TestEveryRouteIsDocumented(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(openapi.Spec(), &doc); err != nil {
		t.Fatalf("parse openapi: %v", err)
	}

	a := &API{svc: core.NewService(memory.NewStore(nil)), logger: nopLogger{}}
	seen := 0
	err := a.routes(nil).Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		ops, ok := doc.Paths[path]
		if !ok {
			t.Errorf("route %s missing from openapi paths", path)
			return nil
		}
		for _, m := range methods {
			if _, ok := ops[strings.ToLower(m)]; !ok {
				t.Errorf("route %s %s missing from openapi", m, path)
			}
			seen++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if seen == 0 {
		t.Fatal("no routes walked")
	}
}
