// Package core implements the medicine-sharing workflows on top of the
// collection store: generic record CRUD plus the cross-collection operations
// (wishlists, donation claims, the fund ledger, notifications, micro-grants).
package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"medshare/internal/store"
	"medshare/pkg/domain"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger routes service and store diagnostics to l.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records the outcome and latency of every operation.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Service exposes the collection operations and workflows. Every call is one
// load-mutate-save cycle of the underlying store.
type Service struct {
	store   *store.Store
	logger  Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// NewService constructs a service persisting through adapter.
func NewService(adapter domain.Adapter, opts ...Option) *Service {
	s := &Service{
		logger:  noopLogger{},
		metrics: noopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = store.New(adapter, store.WithLogger(s.logger), store.WithClock(s.now))
	return s
}

// Driver names the persistence backend.
func (s *Service) Driver() string { return s.store.Driver() }

// Export returns the normalized persisted document.
func (s *Service) Export(ctx context.Context) domain.Document {
	return s.store.Export(ctx)
}

func (s *Service) run(ctx context.Context, op string, fn func(tx domain.Transaction) error) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, fn)
	s.observe(ctx, op, start, err)
	return err
}

func (s *Service) view(ctx context.Context, op string, fn func(v domain.View) error) error {
	start := time.Now()
	err := s.store.View(ctx, fn)
	s.observe(ctx, op, start, err)
	return err
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrKindUnavailable):
		s.logger.Error("operation failed", "operation", op, "error", err)
	default:
		s.logger.Debug("operation rejected", "operation", op, "error", err)
	}
}

func (s *Service) timestamp() string { return domain.FormatTime(s.now()) }

func knownCollection(c domain.Collection) error {
	if !c.IsKnown() {
		return domain.ErrNotFound{Collection: c}
	}
	return nil
}

// ListRecords returns the records of c matching every filter. A non-empty
// term adds a case-insensitive substring match over the collection's search
// fields.
func (s *Service) ListRecords(ctx context.Context, c domain.Collection, filters map[string]string, term string) ([]domain.Record, error) {
	if err := knownCollection(c); err != nil {
		return nil, err
	}
	q := domain.Query{Filters: filters}
	if strings.TrimSpace(term) != "" {
		q.Search = &domain.Search{Term: term, Fields: domain.SearchFieldsFor(c)}
	}
	var out []domain.Record
	err := s.view(ctx, "list_"+string(c), func(v domain.View) error {
		var err error
		out, err = v.List(c, q)
		return err
	})
	return out, err
}

// GetRecord returns one record.
func (s *Service) GetRecord(ctx context.Context, c domain.Collection, id int64) (domain.Record, error) {
	if err := knownCollection(c); err != nil {
		return nil, err
	}
	var out domain.Record
	err := s.view(ctx, "get_"+string(c), func(v domain.View) error {
		var err error
		out, err = v.Get(c, id)
		return err
	})
	return out, err
}

// CreateRecord creates a record in c. Wishlists, donations and transactions
// go through their workflows so the side effects and ledger checks apply.
func (s *Service) CreateRecord(ctx context.Context, c domain.Collection, payload map[string]any) (domain.Record, Result, error) {
	switch c {
	case domain.CollectionWishlists:
		return s.CreateWishlist(ctx, payload)
	case domain.CollectionDonations:
		return s.CreateDonation(ctx, payload)
	case domain.CollectionTransactions:
		rec, err := s.PostTransaction(ctx, payload)
		return rec, Result{}, err
	}
	if err := knownCollection(c); err != nil {
		return nil, Result{}, err
	}
	var created domain.Record
	err := s.run(ctx, "create_"+string(c), func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(c, payload, nil)
		return err
	})
	return created, Result{}, err
}

// UpdateRecord merges payload into the record. The id never changes and
// ledger entries cannot be edited.
func (s *Service) UpdateRecord(ctx context.Context, c domain.Collection, id int64, payload map[string]any) (domain.Record, error) {
	if err := knownCollection(c); err != nil {
		return nil, err
	}
	if c == domain.CollectionTransactions {
		return nil, domain.ConflictError{Collection: c, ID: id, Reason: domain.ReasonImmutableLedger}
	}
	var updated domain.Record
	err := s.run(ctx, "update_"+string(c), func(tx domain.Transaction) error {
		var err error
		updated, err = tx.Update(c, id, payload)
		return err
	})
	return updated, err
}

// DeleteRecord removes the record. Dependent records are left in place.
func (s *Service) DeleteRecord(ctx context.Context, c domain.Collection, id int64) error {
	if err := knownCollection(c); err != nil {
		return err
	}
	if c == domain.CollectionTransactions {
		return domain.ConflictError{Collection: c, ID: id, Reason: domain.ReasonImmutableLedger}
	}
	return s.run(ctx, "delete_"+string(c), func(tx domain.Transaction) error {
		return tx.Delete(c, id)
	})
}

// ClearAll empties every collection. Id counters are kept.
func (s *Service) ClearAll(ctx context.Context) (Result, error) {
	err := s.run(ctx, "clear_all", func(tx domain.Transaction) error {
		tx.Reset()
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "all data cleared"}, nil
}
