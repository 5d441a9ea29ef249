package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImportPredicates(t *testing.T) {
	cases := []struct {
		path     string
		internal bool
		storage  bool
	}{
		{"medshare/internal/store", true, false},
		{"medshare/internal/infra/persistence/sqlite", true, true},
		{"medshare/pkg/domain", false, false},
		{"github.com/jackc/pgx/v5/stdlib", false, true},
		{"github.com/jackc/pgxpool", false, false},
		{"github.com/aws/aws-sdk-go-v2/service/s3", false, true},
		{"github.com/tidwall/gjson", false, false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.path); got != c.internal {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.path, got, c.internal)
		}
		if got := StorageImportForbidden(c.path); got != c.storage {
			t.Fatalf("StorageImportForbidden(%q)=%v want %v", c.path, got, c.storage)
		}
	}
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package tmp\nimport (\n\"fmt\"\n_ \"modernc.org/sqlite\"\n)\nfunc A() { fmt.Println() }\n")
	writeFile(t, dir, "a_test.go", "package tmp\nimport _ \"github.com/jackc/pgx/v5/stdlib\"\n")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	viols, err := directImportViolations(dir, StorageImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "modernc.org/sqlite (a.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}

	AssertNoDirectImports(t, dir, InternalImportForbidden, "no internal imports")
}

func TestDirectImportViolationsParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.go", "package tmp\nimport (\n")
	if _, err := directImportViolations(dir, InternalImportForbidden); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), InternalImportForbidden); err == nil {
		t.Fatal("expected read error")
	}
}

type captureFatal struct{ msg string }

func (c *captureFatal) Fatalf(format string, args ...any) { c.msg = fmt.Sprintf(format, args...) }

func TestFailIfViolations(t *testing.T) {
	var c captureFatal
	failIfViolations(&c, "reason", nil)
	if c.msg != "" {
		t.Fatalf("unexpected failure %q", c.msg)
	}
	failIfViolations(&c, "reason", []string{"x (a.go)"})
	if !strings.Contains(c.msg, "reason") || !strings.Contains(c.msg, "x (a.go)") {
		t.Fatalf("unexpected message %q", c.msg)
	}
}
