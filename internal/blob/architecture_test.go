package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Infra packages may only be imported by their designated wrapper.
func TestInfraImportBoundaries(t *testing.T) {
	rules := []struct {
		infra   string
		allowed []string
	}{
		{infra: "medshare/internal/infra/blob", allowed: []string{"medshare/internal/blob"}},
		{infra: "medshare/internal/infra/persistence", allowed: []string{"medshare/internal/core", "medshare/cmd"}},
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "medshare/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		for _, rule := range rules {
			if underPrefix(pkg.PkgPath, rule.infra) || anyPrefix(pkg.PkgPath, rule.allowed) {
				continue
			}
			for imp := range pkg.Imports {
				if underPrefix(imp, rule.infra) {
					violations = append(violations, pkg.PkgPath+" imports "+imp)
				}
			}
		}
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("forbidden infra import: %s", v)
	}
}

func anyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if underPrefix(path, p) {
			return true
		}
	}
	return false
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
