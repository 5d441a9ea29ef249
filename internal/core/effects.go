package core

import (
	"fmt"

	"medshare/pkg/domain"
)

// effects collects best-effort side effect outcomes for one workflow. A
// failed effect is logged and reported but never fails the workflow.
type effects struct {
	op     string
	logger Logger
	list   []Effect
}

func (s *Service) newEffects(op string) *effects {
	return &effects{op: op, logger: s.logger}
}

func (e *effects) attempt(name string, fn func() error) {
	err := fn()
	if err != nil {
		e.logger.Warn("side effect failed", "operation", e.op, "effect", name, "error", err)
		e.list = append(e.list, Effect{Name: name, Error: err.Error()})
		return
	}
	e.list = append(e.list, Effect{Name: name, OK: true})
}

func (e *effects) result(message string) Result {
	return Result{Message: message, Effects: e.list}
}

type notification struct {
	userID    any
	kind      string
	title     string
	message   string
	actionURL string
	relatedID int64
}

func (s *Service) notify(tx domain.Transaction, n notification) error {
	payload := map[string]any{
		"user_id": n.userID,
		"type":    n.kind,
		"title":   n.title,
		"message": n.message,
	}
	if n.actionURL != "" {
		payload["action_url"] = n.actionURL
	}
	if n.relatedID > 0 {
		payload["related_id"] = n.relatedID
	}
	_, err := tx.Create(domain.CollectionNotifications, payload, nil)
	return err
}

// bumpCounter increments field on the user's counters row, creating the row
// when the user has none.
func bumpCounter(tx domain.Transaction, userID int64, field string) (domain.Record, error) {
	if userID <= 0 {
		return nil, domain.ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}
	rows, err := tx.List(domain.CollectionCounters, domain.Query{
		Filters: map[string]string{"user_id": domain.FormatValue(userID)},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return tx.Create(domain.CollectionCounters, map[string]any{"user_id": userID, field: int64(1)}, nil)
	}
	return tx.Mutate(domain.CollectionCounters, rows[0].ID(), func(r domain.Record) error {
		current, _ := r.Int(field)
		r[field] = current + 1
		return nil
	})
}

// medicineLabel names a medicine for notification text, tolerating dangling ids.
func medicineLabel(v domain.View, id int64, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if med, err := v.Get(domain.CollectionMedicines, id); err == nil && med.String("name") != "" {
		return med.String("name")
	}
	return fmt.Sprintf("Medicine #%d", id)
}

// positiveID reads an integer id field, rejecting missing or non-positive values.
func positiveID(r map[string]any, field string) (int64, error) {
	id, ok := domain.AsInt(r[field])
	if !ok || id <= 0 {
		return 0, domain.ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return id, nil
}
