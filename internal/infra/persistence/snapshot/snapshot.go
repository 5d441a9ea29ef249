// Package snapshot splits an encoded document into top-level buckets for the
// SQL backends and reassembles it on load.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// ErrNotObject is returned when a document to split is not a JSON object.
var ErrNotObject = errors.New("document is not a JSON object")

// Bucket is one top-level key of the document and its raw JSON value.
type Bucket struct {
	Name    string
	Payload []byte
}

// Split returns one bucket per top-level key, sorted by name.
func Split(doc []byte) ([]Bucket, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("split: %w", ErrNotObject)
	}
	parsed := gjson.ParseBytes(doc)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("split: %w", ErrNotObject)
	}
	var buckets []Bucket
	parsed.ForEach(func(key, value gjson.Result) bool {
		buckets = append(buckets, Bucket{Name: key.String(), Payload: []byte(value.Raw)})
		return true
	})
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets, nil
}

// Join reassembles buckets into a document. No buckets means nothing has
// been persisted and yields nil.
func Join(buckets []Bucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(buckets))
	for _, b := range buckets {
		if len(b.Payload) == 0 {
			continue
		}
		if !json.Valid(b.Payload) {
			return nil, fmt.Errorf("decode bucket %s: invalid JSON", b.Name)
		}
		out[b.Name] = json.RawMessage(b.Payload)
	}
	return json.Marshal(out)
}

// Stale lists the names in existing that are absent from buckets so a save
// can drop keys the new document no longer carries.
func Stale(existing []string, buckets []Bucket) []string {
	keep := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		keep[b.Name] = struct{}{}
	}
	var stale []string
	for _, name := range existing {
		if _, ok := keep[name]; !ok {
			stale = append(stale, name)
		}
	}
	return stale
}
