package memory

import (
	"context"
	"errors"
	"testing"
)

func TestStoreLoadEmpty(t *testing.T) {
	s := NewStore(nil)
	doc, err := s.Load(context.Background())
	if err != nil || doc != nil {
		t.Fatalf("expected absent document, got %q (%v)", doc, err)
	}
}

func TestStoreSaveCopiesInput(t *testing.T) {
	s := NewStore(nil)
	buf := []byte(`{"users":[]}`)
	if err := s.Save(context.Background(), buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[2] = 'X'
	doc, _ := s.Load(context.Background())
	if string(doc) != `{"users":[]}` {
		t.Fatalf("expected stored copy to be isolated, got %s", doc)
	}
	doc[0] = '['
	again, _ := s.Load(context.Background())
	if again[0] != '{' {
		t.Fatalf("expected loaded copy to be isolated")
	}
}

func TestStoreSeedAndCanceledContext(t *testing.T) {
	s := NewStore([]byte(`[]`))
	if doc, _ := s.Load(context.Background()); string(doc) != "[]" {
		t.Fatalf("expected seed, got %s", doc)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, []byte("{}")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if s.Driver() != "memory" {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
}
