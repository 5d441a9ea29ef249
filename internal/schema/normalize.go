// Package schema upgrades and repairs persisted documents so that every load
// yields a document satisfying the current shape invariants.
package schema

import (
	"encoding/json"

	"medshare/pkg/domain"

	"github.com/tidwall/gjson"
)

// Shape classifies a raw persisted payload.
type Shape string

const (
	ShapeEmpty   Shape = "empty"
	ShapeInvalid Shape = "invalid"
	ShapeLegacy  Shape = "legacy-list"
	ShapeObject  Shape = "object"
)

// Report describes what Normalize had to do to the input.
type Report struct {
	Shape Shape
	// Raised holds, per collection, the counter value after it was raised to
	// the largest stored id.
	Raised map[domain.Collection]int64
	// Assigned counts records that had no usable id and received a fresh one.
	Assigned int
	// Dropped counts collection entries that were not objects.
	Dropped int
	// Added lists known collections that were missing from the input.
	Added []domain.Collection
}

// Changed reports whether normalization altered anything beyond decoding.
func (r Report) Changed() bool {
	return r.Shape == ShapeLegacy || len(r.Raised) > 0 || r.Assigned > 0 || r.Dropped > 0 || len(r.Added) > 0
}

// Normalize decodes raw and returns a fully shaped document. Empty or
// undecodable input yields the default skeleton; a bare list is wrapped into
// the demoData collection.
func Normalize(raw []byte) (domain.Document, Report) {
	report := Report{Shape: Classify(raw)}
	var doc domain.Document
	switch report.Shape {
	case ShapeLegacy:
		doc = upgradeLegacyList(gjson.ParseBytes(raw), &report)
	case ShapeObject:
		doc = decodeObject(gjson.ParseBytes(raw), &report)
	default:
		return domain.NewDocument(), report
	}
	return reconcile(doc, &report), report
}

// Classify inspects raw without decoding it fully.
func Classify(raw []byte) Shape {
	if len(raw) == 0 {
		return ShapeEmpty
	}
	if !gjson.ValidBytes(raw) {
		return ShapeInvalid
	}
	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.IsArray():
		return ShapeLegacy
	case parsed.IsObject():
		return ShapeObject
	case parsed.Type == gjson.Null:
		return ShapeEmpty
	default:
		return ShapeInvalid
	}
}

// upgradeLegacyList is the version 1 -> 2 upgrade: the list becomes the
// demoData collection and its counter starts at the list length. Entries
// without an id are numbered after the largest id in the list.
func upgradeLegacyList(list gjson.Result, report *Report) domain.Document {
	doc := domain.NewDocument()
	records := decodeRecords(list, report)
	var next int64
	for _, r := range records {
		if id := r.ID(); id > next {
			next = id
		}
	}
	for _, r := range records {
		if r.ID() == 0 {
			next++
			r[domain.FieldID] = next
			report.Assigned++
		}
	}
	doc.Collections[domain.CollectionDemoData] = records
	doc.Meta.Counters[domain.CollectionDemoData] = int64(len(list.Array()))
	return doc
}

func decodeObject(obj gjson.Result, report *Report) domain.Document {
	doc := domain.Document{
		Collections: make(map[domain.Collection][]domain.Record),
		Meta:        domain.Meta{Counters: make(map[domain.Collection]int64)},
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case name == domain.MetaKey:
			decodeMeta(value, &doc.Meta)
		case domain.Collection(name).IsKnown():
			if value.IsArray() {
				doc.Collections[domain.Collection(name)] = decodeRecords(value, report)
			} else {
				doc.Collections[domain.Collection(name)] = []domain.Record{}
				report.Dropped++
			}
		default:
			if doc.Extra == nil {
				doc.Extra = make(map[string]json.RawMessage)
			}
			doc.Extra[name] = json.RawMessage(value.Raw)
		}
		return true
	})
	for _, c := range domain.KnownCollections() {
		if _, ok := doc.Collections[c]; !ok {
			report.Added = append(report.Added, c)
		}
	}
	return doc
}

func decodeMeta(value gjson.Result, meta *domain.Meta) {
	value.Get("counters").ForEach(func(key, n gjson.Result) bool {
		if n.Type == gjson.Number {
			meta.Counters[domain.Collection(key.String())] = n.Int()
		}
		return true
	})
}

func decodeRecords(list gjson.Result, report *Report) []domain.Record {
	entries := list.Array()
	records := make([]domain.Record, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsObject() {
			report.Dropped++
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(entry.Raw), &fields); err != nil {
			report.Dropped++
			continue
		}
		records = append(records, domain.Record(fields))
	}
	return records
}

// reconcile ensures every known collection and counter exists, raises
// counters that fell behind the stored ids and gives fresh ids to records
// whose id is missing or repeats an earlier record's id.
func reconcile(doc domain.Document, report *Report) domain.Document {
	if doc.Collections == nil {
		doc.Collections = make(map[domain.Collection][]domain.Record)
	}
	if doc.Meta.Counters == nil {
		doc.Meta.Counters = make(map[domain.Collection]int64)
	}
	for _, c := range domain.KnownCollections() {
		if doc.Collections[c] == nil {
			doc.Collections[c] = []domain.Record{}
		}
		if _, ok := doc.Meta.Counters[c]; !ok {
			doc.Meta.Counters[c] = 0
		}
	}
	for c, records := range doc.Collections {
		counter := doc.Meta.Counters[c]
		if counter < 0 {
			counter = 0
		}
		var maxID int64
		var missing []int
		seen := make(map[int64]struct{}, len(records))
		for i, r := range records {
			id := r.ID()
			if _, dup := seen[id]; id == 0 || dup {
				missing = append(missing, i)
				continue
			}
			seen[id] = struct{}{}
			r[domain.FieldID] = id
			if id > maxID {
				maxID = id
			}
		}
		if counter < maxID {
			counter = maxID
			if report.Raised == nil {
				report.Raised = make(map[domain.Collection]int64)
			}
			report.Raised[c] = counter
		}
		for _, i := range missing {
			counter++
			records[i][domain.FieldID] = counter
			report.Assigned++
		}
		doc.Meta.Counters[c] = counter
	}
	doc.Meta.SchemaVersion = domain.SchemaVersion
	return doc
}
