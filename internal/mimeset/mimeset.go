// Package mimeset tracks the content types of images recognized during a session.
package mimeset

import (
	"sort"
	"strings"
)

// Set is an unordered collection of MIME types. The zero value is an empty set.
type Set struct {
	items map[string]struct{}
}

// New returns a set holding the given types
func New(types ...string) *Set {
	s := &Set{}
	for _, t := range types {
		s.Add(t)
	}
	return s
}

// Add inserts a type. Blank types are ignored.
func (s *Set) Add(mimeType string) {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return
	}
	if s.items == nil {
		s.items = make(map[string]struct{})
	}
	s.items[mimeType] = struct{}{}
}

func (s *Set) Has(mimeType string) bool {
	_, ok := s.items[mimeType]
	return ok
}

func (s *Set) Len() int {
	return len(s.items)
}

// Values returns the types in lexical order
func (s *Set) Values() []string {
	values := make([]string, 0, len(s.items))
	for t := range s.items {
		values = append(values, t)
	}
	sort.Strings(values)
	return values
}

// Join returns the types joined by sep in lexical order
func (s *Set) Join(sep string) string {
	return strings.Join(s.Values(), sep)
}

