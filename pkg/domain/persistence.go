package domain

import "context"

// Adapter persists the encoded document as a unit. Load returns (nil, nil)
// when nothing has been persisted yet. Save replaces the stored document so
// that a Load after a completed Save never observes a partial write.
type Adapter interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
	Driver() string
}

// Search is the distinguished substring filter: a record matches when any of
// Fields contains Term, compared case-insensitively.
type Search struct {
	Term   string
	Fields []string
}

// Query selects records from a collection. Every filter must equal the
// record's field in string form; a filter naming a field the record lacks
// excludes the record.
type Query struct {
	Filters map[string]string
	Search  *Search
}

// View provides read-only access to a normalized document.
type View interface {
	List(c Collection, q Query) ([]Record, error)
	Get(c Collection, id int64) (Record, error)
	Meta() Meta
}

// Transaction exposes the collection operations available inside one
// load-mutate-save cycle.
type Transaction interface {
	View
	// Create merges the collection's schema defaults, then defaults, then
	// payload, allocates the next id and appends the record.
	Create(c Collection, payload, defaults map[string]any) (Record, error)
	Update(c Collection, id int64, payload map[string]any) (Record, error)
	Delete(c Collection, id int64) error
	// Mutate applies fn to the stored record in place. The id cannot change.
	Mutate(c Collection, id int64, fn func(Record) error) (Record, error)
	// Remove deletes every record of c matching the predicate and returns how many went.
	Remove(c Collection, match func(Record) bool) int
	// Reset empties every collection while keeping the id counters.
	Reset()
}
