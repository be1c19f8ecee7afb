package pagination

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sort errors.
var (
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'title:desc')")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// SortSpec is a parsed --sort value. The zero SortSpec keeps source order.
type SortSpec struct {
	Field string
	Desc  bool
}

// ParseSort parses "field" or "field:asc|desc".
func ParseSort(s string) (SortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortSpec{}, nil
	}

	field, order, hasOrder := strings.Cut(s, ":")
	field = strings.TrimSpace(field)
	if field == "" || strings.Contains(order, ":") {
		return SortSpec{}, fmt.Errorf("%w: %q", ErrInvalidSortFormat, s)
	}

	spec := SortSpec{Field: field}
	if hasOrder {
		switch strings.ToLower(strings.TrimSpace(order)) {
		case "asc":
		case "desc":
			spec.Desc = true
		default:
			return SortSpec{}, fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
		}
	}
	return spec, nil
}

// Sorter orders items by named fields.
type Sorter[T any] struct {
	fields map[string]func(a, b T) int
}

// NewSorter creates a sorter from ascending comparison functions keyed by
// field name.
func NewSorter[T any](fields map[string]func(a, b T) int) *Sorter[T] {
	return &Sorter[T]{fields: fields}
}

// Fields returns the sortable field names in order.
func (s *Sorter[T]) Fields() []string {
	return slices.Sorted(maps.Keys(s.fields))
}

// Validate rejects a spec naming an unknown field.
func (s *Sorter[T]) Validate(spec SortSpec) error {
	if spec.Field == "" {
		return nil
	}
	if _, ok := s.fields[spec.Field]; !ok {
		return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, spec.Field, strings.Join(s.Fields(), ", "))
	}
	return nil
}

// Sort returns a stably sorted copy of items. Unknown or empty fields return
// items unchanged.
func (s *Sorter[T]) Sort(items []T, spec SortSpec) []T {
	cmp, ok := s.fields[spec.Field]
	if !ok {
		return items
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if spec.Desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return sorted
}
