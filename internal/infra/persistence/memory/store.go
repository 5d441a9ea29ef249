// Package memory provides an in-process document adapter for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"medshare/pkg/domain"
)

var _ domain.Adapter = (*Store)(nil)

// Store keeps the encoded document in memory.
type Store struct {
	mu  sync.RWMutex
	doc []byte
}

// NewStore returns an empty store, optionally seeded with an encoded document.
func NewStore(seed []byte) *Store {
	s := &Store{}
	if seed != nil {
		s.doc = append([]byte(nil), seed...)
	}
	return s
}

// Load returns a copy of the stored document, or nil when nothing was saved.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, nil
	}
	return append([]byte(nil), s.doc...), nil
}

// Save swaps in a copy of doc.
func (s *Store) Save(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := append([]byte(nil), doc...)
	s.mu.Lock()
	s.doc = cp
	s.mu.Unlock()
	return nil
}

// Driver implements domain.Adapter.
func (s *Store) Driver() string { return "memory" }
