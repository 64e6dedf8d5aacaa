package utils

import (
	"strings"

	mapset "github.com/deckarep/golang-set"
)

// NameFilter excludes variables by exact name or by a "prefix*" pattern.
type NameFilter struct {
	exact    mapset.Set
	prefixes []string
}

func NewNameFilter(patterns []string) *NameFilter {
	f := &NameFilter{exact: mapset.NewThreadUnsafeSet()}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if len(p) == 0 {
			continue
		}
		if strings.HasSuffix(p, "*") {
			f.prefixes = append(f.prefixes, strings.TrimSuffix(p, "*"))
			continue
		}
		f.exact.Add(p)
	}
	return f
}

// Excluded reports whether name matches one of the filter patterns. The
// empty name is always excluded.
func (f *NameFilter) Excluded(name string) bool {
	if len(name) == 0 {
		return true
	}
	if f.exact.Contains(name) {
		return true
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
