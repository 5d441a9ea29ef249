// Package store owns the persisted document. Every operation loads the
// document through the configured adapter, normalizes it, and either reads
// from it or mutates a private copy that is saved back as a whole.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"medshare/internal/schema"
	"medshare/pkg/domain"
)

// Logger is the subset of structured logging the store needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to l.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// Store serializes every load-mutate-save cycle behind a single write lock.
// Reads take the read lock so they never observe a document mid-save.
type Store struct {
	mu      sync.RWMutex
	adapter domain.Adapter
	logger  Logger
	nowFn   func() time.Time
}

// New constructs a store over the adapter.
func New(adapter domain.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		logger:  noopLogger{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver names the persistence backend.
func (s *Store) Driver() string { return s.adapter.Driver() }

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.nowFn() }

// RunInTransaction loads the document, applies fn to a private copy and saves
// the copy if fn succeeded and changed anything. Ids allocated by a failed fn
// stay allocated: the advanced counters are persisted over the untouched
// document.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	base := s.load(ctx)
	tx := newTransaction(base.Clone(), s.nowFn())
	if err := fn(tx); err != nil {
		if tx.allocated {
			s.keepAllocations(ctx, base, tx.doc.Meta.Counters)
		}
		return err
	}
	if !tx.dirty {
		return nil
	}
	if err := s.save(ctx, tx.doc); err != nil {
		return err
	}
	s.logger.Debug("document saved", "driver", s.adapter.Driver(), "changes", tx.changes)
	return nil
}

// View runs fn against a freshly loaded, normalized document.
func (s *Store) View(ctx context.Context, fn func(domain.View) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := s.load(ctx)
	return fn(newTransaction(doc, s.nowFn()))
}

// Export returns a normalized copy of the persisted document.
func (s *Store) Export(ctx context.Context) domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

// load never fails: read errors and undecodable payloads fall back to the
// default skeleton so the store stays usable on first run or after corruption.
func (s *Store) load(ctx context.Context) domain.Document {
	raw, err := s.adapter.Load(ctx)
	if err != nil {
		s.logger.Warn("document load failed, using empty document", "driver", s.adapter.Driver(), "error", err)
		return domain.NewDocument()
	}
	doc, report := schema.Normalize(raw)
	if report.Shape == schema.ShapeInvalid {
		s.logger.Warn("persisted document is not valid, using empty document", "driver", s.adapter.Driver(), "bytes", len(raw))
	}
	if report.Changed() {
		s.logger.Debug("document normalized",
			"shape", string(report.Shape),
			"raised", report.Raised,
			"assigned", report.Assigned,
			"dropped", report.Dropped,
			"added", report.Added,
		)
	}
	return doc
}

func (s *Store) save(ctx context.Context, doc domain.Document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.UnavailableError{Op: "encode", Err: err}
	}
	if err := s.adapter.Save(ctx, payload); err != nil {
		return domain.UnavailableError{Op: "save", Err: fmt.Errorf("%s: %w", s.adapter.Driver(), err)}
	}
	return nil
}

func (s *Store) keepAllocations(ctx context.Context, base domain.Document, counters map[domain.Collection]int64) {
	advanced := false
	for c, n := range counters {
		if n > base.Meta.Counters[c] {
			base.Meta.Counters[c] = n
			advanced = true
		}
	}
	if !advanced {
		return
	}
	if err := s.save(ctx, base); err != nil {
		s.logger.Warn("persisting allocated ids failed", "error", err)
	}
}
