package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewDocumentSkeleton(t *testing.T) {
	doc := NewDocument()
	for _, c := range KnownCollections() {
		if recs, ok := doc.Collections[c]; !ok || recs == nil || len(recs) != 0 {
			t.Fatalf("expected empty %s collection", c)
		}
		if doc.Meta.Counters[c] != 0 {
			t.Fatalf("expected zero counter for %s", c)
		}
	}
	if doc.Meta.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected schema version %d", doc.Meta.SchemaVersion)
	}
	if Collection("pets").IsKnown() || !CollectionDemoData.IsKnown() {
		t.Fatal("unexpected IsKnown result")
	}
}

func TestDocumentMarshalFlattens(t *testing.T) {
	doc := NewDocument()
	doc.Collections[CollectionUsers] = append(doc.Collections[CollectionUsers], Record{"id": int64(1), "email": "a@example.com"})
	doc.Meta.Counters[CollectionUsers] = 1
	doc.Extra = map[string]json.RawMessage{"legacy": json.RawMessage(`{"keep":true}`)}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"users", "transactions", "demoData", MetaKey, "legacy"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("expected top-level key %s in %s", key, raw)
		}
	}
	var meta Meta
	if err := json.Unmarshal(out[MetaKey], &meta); err != nil || meta.Counters[CollectionUsers] != 1 {
		t.Fatalf("unexpected meta %s (%v)", out[MetaKey], err)
	}
}

func TestDocumentCloneIsIndependent(t *testing.T) {
	doc := NewDocument()
	doc.Collections[CollectionUsers] = []Record{{"id": int64(1), "email": "a"}}
	doc.Extra = map[string]json.RawMessage{"x": json.RawMessage(`1`)}
	c := doc.Clone()
	c.Collections[CollectionUsers][0]["email"] = "b"
	c.Meta.Counters[CollectionUsers] = 9
	c.Extra["x"][0] = '2'
	if doc.Collections[CollectionUsers][0]["email"] != "a" || doc.Meta.Counters[CollectionUsers] != 0 || string(doc.Extra["x"]) != "1" {
		t.Fatal("clone shares state with original")
	}
}

func TestSchemaDefaultsAndRequired(t *testing.T) {
	d := DefaultsFor(CollectionMedicines)
	d["current_demand"] = float64(99)
	if DefaultsFor(CollectionMedicines)["current_demand"] != float64(0) {
		t.Fatal("defaults must be fresh per call")
	}
	if len(DefaultsFor(CollectionUsers)) != 0 {
		t.Fatal("users carry no defaults")
	}
	fields := SearchFieldsFor(CollectionMedicines)
	if len(fields) != 2 || fields[0] != "name" {
		t.Fatalf("unexpected search fields %v", fields)
	}
	if SearchFieldsFor(CollectionUsers) != nil {
		t.Fatal("users search every string field")
	}

	err := ValidateRequired(CollectionTransactions, Record{"type": "", "amount": 5})
	var verr ValidationError
	if !errors.As(err, &verr) || verr.Field != "type" {
		t.Fatalf("expected missing type, got %v", err)
	}
	if err := ValidateRequired(CollectionWishlists, Record{"user_id": 1, "medicine_id": nil}); !errors.Is(err, ErrKindValidation) {
		t.Fatalf("null required field must fail, got %v", err)
	}
	if err := ValidateRequired(CollectionUsers, Record{}); err != nil {
		t.Fatalf("users have no required fields: %v", err)
	}
}
