package store

import (
	"strings"

	"medshare/pkg/domain"
)

// Matches reports whether r satisfies every equality filter and, when set,
// the substring search of q.
func Matches(r domain.Record, q domain.Query) bool {
	for field, want := range q.Filters {
		v, ok := r[field]
		if !ok {
			return false
		}
		if domain.FormatValue(v) != want {
			return false
		}
	}
	if q.Search == nil {
		return true
	}
	term := strings.ToLower(strings.TrimSpace(q.Search.Term))
	if term == "" {
		return true
	}
	if len(q.Search.Fields) == 0 {
		for _, v := range r {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false
	}
	for _, field := range q.Search.Fields {
		if strings.Contains(strings.ToLower(r.String(field)), term) {
			return true
		}
	}
	return false
}
