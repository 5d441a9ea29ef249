package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Common record fields.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Record is one loosely typed entity: a mapping from field name to a JSON
// value (string, float64, bool, nil, []any, map[string]any). The id is kept
// as int64 once the record has been normalized or created.
type Record map[string]any

// ID returns the record id, or 0 when the record has no positive integer id.
func (r Record) ID() int64 {
	id, ok := AsInt(r[FieldID])
	if !ok || id <= 0 {
		return 0
	}
	return id
}

// Clone deep-copies the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge copies every field of src into r. The id field is never overwritten.
func (r Record) Merge(src map[string]any) {
	for k, v := range src {
		if k == FieldID {
			continue
		}
		r[k] = cloneValue(v)
	}
}

// Has reports whether the field is present, even when null.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// IsSet reports whether the field is present and not null.
func (r Record) IsSet(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// String returns the field's string form, or "" when absent or null.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

// Int returns the field as an integer when it holds an integral number or a
// numeric string.
func (r Record) Int(field string) (int64, bool) {
	return AsInt(r[field])
}

// Float returns the field as a float when it holds a number or a numeric string.
func (r Record) Float(field string) (float64, bool) {
	return AsFloat(r[field])
}

// Bool returns the field as a boolean. Missing and null fields are false.
func (r Record) Bool(field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// timeLayouts are tried in order. The zone-less forms are what older
// deployments wrote and are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Time parses the field as a timestamp: RFC 3339, or an ISO 8601 date-time
// or date without a zone.
func (r Record) Time(field string) (time.Time, bool) {
	s, ok := r[field].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime renders t the way timestamps are stored in records.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatValue renders a record value as the string used for equality
// filtering: integral numbers without a fraction, booleans as true/false and
// null as "null".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// AsInt converts an integral JSON value to int64.
func AsInt(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case float32:
		return AsInt(float64(val))
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || math.IsNaN(val) {
			return 0, false
		}
		return int64(val), true
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// AsFloat converts a numeric JSON value or numeric string to float64.
func AsFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case float32:
		f = float64(val)
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Record:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	case json.RawMessage:
		return append(json.RawMessage(nil), val...)
	default:
		return val
	}
}
