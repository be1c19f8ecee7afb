package cli

import (
	"strings"

	"github.com/rshade/pagerkit/internal/cli/pagination"
	"github.com/rshade/pagerkit/internal/demo"
)

// itemSorter sorts printed items by the --sort field.
//
//nolint:gochecknoglobals // Immutable field table.
var itemSorter = pagination.NewSorter(map[string]func(a, b demo.Item) int{
	"id":         func(a, b demo.Item) int { return strings.Compare(a.ID, b.ID) },
	"title":      func(a, b demo.Item) int { return strings.Compare(a.Title, b.Title) },
	"kind":       func(a, b demo.Item) int { return strings.Compare(a.Kind, b.Kind) },
	"created_at": func(a, b demo.Item) int { return a.CreatedAt.Compare(b.CreatedAt) },
})
