package domain

import (
	"maps"
	"strings"
)

// Record is implemented by every directory record. Identity is the integer id
// assigned by the backend.
type Record interface {
	RecordID() int64
}

// Page is the envelope returned by paginated list endpoints. A page is
// produced fresh per response and replaced wholesale.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
}

// FilterAll is the reserved filter value meaning "no filter".
const FilterAll = "all"

// Criteria holds the search and filter state of a list view. Page is 0-based.
type Criteria struct {
	Term   string
	Filter map[string]string
	Page   int
	Size   int
}

// Clone returns a deep copy of c.
func (c Criteria) Clone() Criteria {
	out := c
	out.Filter = maps.Clone(c.Filter)
	return out
}

// ActiveFilter returns the filter value for key, or "" when the filter is
// unset or carries the FilterAll sentinel.
func (c Criteria) ActiveFilter(key string) string {
	v := strings.TrimSpace(c.Filter[key])
	if strings.EqualFold(v, FilterAll) {
		return ""
	}
	return v
}

// SameSearch reports whether c and o select the same records, ignoring
// page and size.
func (c Criteria) SameSearch(o Criteria) bool {
	if strings.TrimSpace(c.Term) != strings.TrimSpace(o.Term) {
		return false
	}
	keys := make(map[string]struct{}, len(c.Filter)+len(o.Filter))
	for k := range c.Filter {
		keys[k] = struct{}{}
	}
	for k := range o.Filter {
		keys[k] = struct{}{}
	}
	for k := range keys {
		if c.ActiveFilter(k) != o.ActiveFilter(k) {
			return false
		}
	}
	return true
}
