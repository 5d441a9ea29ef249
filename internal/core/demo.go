package core

import (
	"context"
	"strings"

	"medshare/pkg/domain"
)

// CreateDemoEntry appends a free-text entry to the legacy demo collection.
func (s *Service) CreateDemoEntry(ctx context.Context, text string) (domain.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ValidationError{Field: "text", Reason: "is required"}
	}
	var created domain.Record
	err := s.run(ctx, "create_demo_entry", func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(domain.CollectionDemoData, map[string]any{
			"text":      text,
			"timestamp": s.timestamp(),
		}, nil)
		return err
	})
	return created, err
}

// ListDemoEntries returns the demo entries in insertion order.
func (s *Service) ListDemoEntries(ctx context.Context) ([]domain.Record, error) {
	return s.ListRecords(ctx, domain.CollectionDemoData, nil, "")
}

// DeleteDemoEntry removes one demo entry.
func (s *Service) DeleteDemoEntry(ctx context.Context, id int64) error {
	return s.DeleteRecord(ctx, domain.CollectionDemoData, id)
}
