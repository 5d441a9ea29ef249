package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunRejectsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"medshare", "-bogus"}, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunConfigError(t *testing.T) {
	t.Setenv("MEDSHARE_STORAGE_DRIVER", "floppy")
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"medshare", "-env-file", ""}, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "config") {
		t.Fatalf("expected config error, got %q", stderr.String())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Setenv("MEDSHARE_STORAGE_DRIVER", "file")
	t.Setenv("MEDSHARE_DATA_FILE", filepath.Join(t.TempDir(), "data.json"))
	t.Setenv("MEDSHARE_HTTP_ADDR", "127.0.0.1:0")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var stderr bytes.Buffer
	if code := run(ctx, []string{"medshare", "-env-file", ""}, &stderr); code != 0 {
		t.Fatalf("expected clean shutdown, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "server stopped") {
		t.Fatalf("expected shutdown log, got %q", stderr.String())
	}
}
