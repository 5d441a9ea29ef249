package store

import (
	"time"

	"medshare/pkg/domain"
)

var _ domain.Transaction = (*transaction)(nil)

// transaction is the mutable copy of the document handed to one
// RunInTransaction callback. It also backs read-only views.
type transaction struct {
	doc       domain.Document
	now       time.Time
	dirty     bool
	allocated bool
	changes   int
}

func newTransaction(doc domain.Document, now time.Time) *transaction {
	return &transaction{doc: doc, now: now}
}

func (tx *transaction) records(c domain.Collection) ([]domain.Record, error) {
	records, ok := tx.doc.Collections[c]
	if !ok {
		return nil, domain.ErrNotFound{Collection: c}
	}
	return records, nil
}

func (tx *transaction) index(c domain.Collection, id int64) (int, error) {
	records, err := tx.records(c)
	if err != nil {
		return -1, err
	}
	for i, r := range records {
		if r.ID() == id {
			return i, nil
		}
	}
	return -1, domain.ErrNotFound{Collection: c, ID: id}
}

func (tx *transaction) touch() {
	tx.dirty = true
	tx.changes++
}

// Meta returns a copy of the meta block.
func (tx *transaction) Meta() domain.Meta {
	counters := make(map[domain.Collection]int64, len(tx.doc.Meta.Counters))
	for c, n := range tx.doc.Meta.Counters {
		counters[c] = n
	}
	return domain.Meta{Counters: counters, SchemaVersion: tx.doc.Meta.SchemaVersion}
}

// List returns clones of the matching records in insertion order.
func (tx *transaction) List(c domain.Collection, q domain.Query) ([]domain.Record, error) {
	records, err := tx.records(c)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, q) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Get returns a clone of the record with the id.
func (tx *transaction) Get(c domain.Collection, id int64) (domain.Record, error) {
	i, err := tx.index(c, id)
	if err != nil {
		return nil, err
	}
	return tx.doc.Collections[c][i].Clone(), nil
}

// Create allocates the next id for c and appends the merged record. The
// counter advances before anything else can fail so an id is never handed
// out twice.
func (tx *transaction) Create(c domain.Collection, payload, defaults map[string]any) (domain.Record, error) {
	if _, err := tx.records(c); err != nil {
		return nil, err
	}
	record := domain.Record(domain.DefaultsFor(c))
	record.Merge(defaults)
	record.Merge(payload)
	if err := domain.ValidateRequired(c, record); err != nil {
		return nil, err
	}

	id := tx.doc.Meta.Counters[c] + 1
	tx.doc.Meta.Counters[c] = id
	tx.allocated = true

	record[domain.FieldID] = id
	if !record.IsSet(domain.FieldCreatedAt) {
		record[domain.FieldCreatedAt] = domain.FormatTime(tx.now)
	}
	tx.doc.Collections[c] = append(tx.doc.Collections[c], record)
	tx.touch()
	return record.Clone(), nil
}

// Update merges payload into the record. Any id in the payload is ignored.
func (tx *transaction) Update(c domain.Collection, id int64, payload map[string]any) (domain.Record, error) {
	return tx.Mutate(c, id, func(r domain.Record) error {
		r.Merge(payload)
		return nil
	})
}

// Mutate applies fn to a copy of the record and stores the copy if fn succeeds.
func (tx *transaction) Mutate(c domain.Collection, id int64, fn func(domain.Record) error) (domain.Record, error) {
	i, err := tx.index(c, id)
	if err != nil {
		return nil, err
	}
	current := tx.doc.Collections[c][i].Clone()
	if err := fn(current); err != nil {
		return nil, err
	}
	current[domain.FieldID] = id
	current[domain.FieldUpdatedAt] = domain.FormatTime(tx.now)
	tx.doc.Collections[c][i] = current
	tx.touch()
	return current.Clone(), nil
}

// Delete removes the record. Records elsewhere that reference it are left alone.
func (tx *transaction) Delete(c domain.Collection, id int64) error {
	i, err := tx.index(c, id)
	if err != nil {
		return err
	}
	records := tx.doc.Collections[c]
	tx.doc.Collections[c] = append(records[:i:i], records[i+1:]...)
	tx.touch()
	return nil
}

// Remove deletes every record of c for which match returns true.
func (tx *transaction) Remove(c domain.Collection, match func(domain.Record) bool) int {
	records, err := tx.records(c)
	if err != nil {
		return 0
	}
	kept := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed > 0 {
		tx.doc.Collections[c] = kept
		tx.touch()
	}
	return removed
}

// Reset empties every collection and drops unknown keys. Counters are kept
// so ids are never reused.
func (tx *transaction) Reset() {
	for _, c := range domain.KnownCollections() {
		tx.doc.Collections[c] = []domain.Record{}
	}
	tx.doc.Extra = nil
	tx.touch()
}
