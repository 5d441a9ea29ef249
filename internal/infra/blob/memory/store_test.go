package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"medshare/internal/blob/core"
)

func TestMemoryStoreIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	src := []byte("payload")
	if _, err := s.Put(ctx, "k", bytes.NewReader(src), core.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	data[0] = 'X'
	_, rc2, _ := s.Get(ctx, "k")
	again, _ := io.ReadAll(rc2)
	if string(again) != "payload" || info.ContentType != "text/plain" || info.Size != 7 {
		t.Fatalf("unexpected state %q %+v", again, info)
	}
	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
