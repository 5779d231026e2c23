// Package types contains common types used across the application
package types

import (
	json "github.com/goccy/go-json"
)

// OrderedSet is a duplicate-free list of labels that remembers insertion order.
// The zero value is ready to use.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet builds a set from labels, dropping repeats after their first occurrence.
func NewOrderedSet(labels ...string) OrderedSet {
	var s OrderedSet
	s.Add(labels...)
	return s
}

// Add appends labels that are not already present. Empty labels are ignored.
func (s *OrderedSet) Add(labels ...string) {
	for _, l := range labels {
		if l == "" {
			continue
		}
		if s.index == nil {
			s.index = make(map[string]struct{})
		}
		if _, ok := s.index[l]; ok {
			continue
		}
		s.index[l] = struct{}{}
		s.items = append(s.items, l)
	}
}

// Contains reports whether label is in the set.
func (s OrderedSet) Contains(label string) bool {
	_, ok := s.index[label]
	return ok
}

// Len returns the number of labels.
func (s OrderedSet) Len() int { return len(s.items) }

// Items returns a copy of the labels in insertion order.
func (s OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// MarshalJSON encodes the set as a JSON array, never null.
func (s OrderedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

// UnmarshalJSON decodes a JSON array, deduplicating on the way in.
func (s *OrderedSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewOrderedSet(labels...)
	return nil
}
