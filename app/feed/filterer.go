package feed

import (
	"fmt"
	"strings"
)

// Filterer applies a source's include/exclude rules. Matching is a
// case-insensitive substring test.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks items rejected by filters. Order and length are preserved.
func (f *Filterer) Run(items []Item, filters []SourceFilter) []Item {
	if len(filters) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		isFiltered, filterReason := f.applyFilters(item, filters)
		item.IsFiltered = isFiltered
		item.FilterReason = filterReason
		filtered = append(filtered, item)
	}

	return filtered
}

// Visible drops the items Run marked as filtered.
func (f *Filterer) Visible(items []Item, filters []SourceFilter) []Item {
	if len(filters) == 0 {
		return items
	}

	visible := make([]Item, 0, len(items))
	for _, item := range f.Run(items, filters) {
		if !item.IsFiltered {
			visible = append(visible, item)
		}
	}
	return visible
}

func (f *Filterer) applyFilters(item Item, filters []SourceFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "content":
		return item.Content
	case "link":
		return item.Link
	default:
		return ""
	}
}
