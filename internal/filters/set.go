// Package filters builds filter sets from the dashboard form and decides
// when a filter change triggers a recompute.
package filters

import (
	"maps"
	"strings"
)

// AllValue is the select option meaning "no filter"
const AllValue = "all"

// Set maps a field name to a trimmed, non-empty filter value
type Set map[string]string

// Collect builds a Set from select and text input values. Selects that are
// empty or "All" (any case) are skipped; inputs are trimmed and skipped when
// empty.
func Collect(selects, inputs map[string]string) Set {
	set := make(Set, len(selects)+len(inputs))
	for name, value := range selects {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, AllValue) {
			continue
		}
		set[name] = value
	}
	for name, value := range inputs {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		set[name] = value
	}
	return set
}

// Clone returns an independent copy
func (s Set) Clone() Set {
	if s == nil {
		return Set{}
	}
	return maps.Clone(s)
}

// Equal reports whether both sets hold the same filters
func (s Set) Equal(other Set) bool {
	return maps.Equal(s, other)
}
