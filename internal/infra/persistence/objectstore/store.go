// Package objectstore persists the document as a single blob, on local disk,
// in memory or in an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"medshare/internal/blob"
	"medshare/pkg/domain"
)

var _ domain.Adapter = (*Store)(nil)

const defaultKey = "medshare/data.json"

// Store reads and replaces one blob.
type Store struct {
	blobs blob.Store
	key   string
}

// NewStore wraps a blob store. An empty key selects medshare/data.json.
func NewStore(blobs blob.Store, key string) *Store {
	if key == "" {
		key = defaultKey
	}
	return &Store{blobs: blobs, key: key}
}

// Driver implements domain.Adapter.
func (s *Store) Driver() string { return "blob+" + string(s.blobs.Driver()) }

// Key returns the blob key holding the document.
func (s *Store) Key() string { return s.key }

// Load returns the blob contents. A missing blob is not an error.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	_, rc, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return data, nil
}

// Save overwrites the blob.
func (s *Store) Save(ctx context.Context, doc []byte) error {
	if _, err := s.blobs.Put(ctx, s.key, bytes.NewReader(doc), blob.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("put %s: %w", s.key, err)
	}
	return nil
}
