// Package content loads markdown items from the content directory and
// exposes them through a small query interface.
package content

import (
	"path"
	"sort"

	"github.com/Kush-Singh-26/shutter/builder/models"
)

// Collection is the query surface collections are derived from.
type Collection interface {
	// All returns every item, sorted by date ascending.
	All() []*models.Item
	// FilteredByGlob returns items whose input path matches pattern.
	FilteredByGlob(pattern string) []*models.Item
	// FilteredByTag returns items carrying tag, sorted by date ascending.
	FilteredByTag(tag string) []*models.Item
}

// Set is an in-memory Collection over a fixed list of items.
type Set struct {
	items []*models.Item
}

// NewSet orders items by date ascending. Items with equal dates keep their
// input order.
func NewSet(items []*models.Item) *Set {
	sorted := make([]*models.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &Set{items: sorted}
}

func (s *Set) All() []*models.Item {
	out := make([]*models.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) FilteredByGlob(pattern string) []*models.Item {
	var out []*models.Item
	for _, it := range s.items {
		if ok, _ := path.Match(pattern, it.InputPath); ok {
			out = append(out, it)
		}
	}
	return out
}

func (s *Set) FilteredByTag(tag string) []*models.Item {
	var out []*models.Item
	for _, it := range s.items {
		if it.HasTag(tag) {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of items in the set.
func (s *Set) Len() int {
	return len(s.items)
}
