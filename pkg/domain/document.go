// Package domain defines the document model shared by the store, the schema
// normalizer, the persistence adapters and the workflow engine.
package domain

import "encoding/json"

// Collection names a set of records of one entity kind.
type Collection string

const (
	CollectionUsers         Collection = "users"
	CollectionMedicines     Collection = "medicines"
	CollectionWishlists     Collection = "wishlists"
	CollectionDonations     Collection = "donations"
	CollectionGrants        Collection = "grants"
	CollectionProfiles      Collection = "profiles"
	CollectionCounters      Collection = "counters"
	CollectionNotifications Collection = "notifications"
	CollectionTransactions  Collection = "transactions"
	// CollectionDemoData holds entries migrated from the legacy bare-list format.
	CollectionDemoData Collection = "demoData"
)

// SchemaVersion is the current shape of the persisted document. Version 1 was
// the legacy bare list of demo entries.
const SchemaVersion = 2

// MetaKey is the top-level key of the metadata block.
const MetaKey = "meta"

// KnownCollections lists every collection the document always carries, in the
// order they are written.
func KnownCollections() []Collection {
	return []Collection{
		CollectionUsers,
		CollectionMedicines,
		CollectionWishlists,
		CollectionDonations,
		CollectionGrants,
		CollectionProfiles,
		CollectionCounters,
		CollectionNotifications,
		CollectionTransactions,
		CollectionDemoData,
	}
}

// IsKnown reports whether c is one of the document's collections.
func (c Collection) IsKnown() bool {
	for _, known := range KnownCollections() {
		if known == c {
			return true
		}
	}
	return false
}

// Meta is the metadata block of the document.
type Meta struct {
	// Counters holds the last allocated id per collection.
	Counters      map[Collection]int64 `json:"counters"`
	SchemaVersion int                  `json:"schema_version"`
}

// Document is the whole database: every collection plus the meta block. Keys
// the current schema does not know about are kept in Extra so they survive a
// load/save round trip.
type Document struct {
	Collections map[Collection][]Record
	Meta        Meta
	Extra       map[string]json.RawMessage
}

// NewDocument returns the default skeleton: every known collection empty and
// every counter at zero.
func NewDocument() Document {
	doc := Document{
		Collections: make(map[Collection][]Record, len(KnownCollections())),
		Meta: Meta{
			Counters:      make(map[Collection]int64, len(KnownCollections())),
			SchemaVersion: SchemaVersion,
		},
	}
	for _, c := range KnownCollections() {
		doc.Collections[c] = []Record{}
		doc.Meta.Counters[c] = 0
	}
	return doc
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	out := Document{
		Collections: make(map[Collection][]Record, len(d.Collections)),
		Meta: Meta{
			Counters:      make(map[Collection]int64, len(d.Meta.Counters)),
			SchemaVersion: d.Meta.SchemaVersion,
		},
	}
	for c, records := range d.Collections {
		cloned := make([]Record, len(records))
		for i, r := range records {
			cloned[i] = r.Clone()
		}
		out.Collections[c] = cloned
	}
	for c, n := range d.Meta.Counters {
		out.Meta.Counters[c] = n
	}
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// MarshalJSON flattens the document into a single object keyed by collection
// name, with the meta block under "meta".
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Collections)+len(d.Extra)+1)
	for k, v := range d.Extra {
		out[k] = v
	}
	for c, records := range d.Collections {
		if records == nil {
			records = []Record{}
		}
		out[string(c)] = records
	}
	out[MetaKey] = d.Meta
	return json.Marshal(out)
}
