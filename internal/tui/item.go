package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rshade/pagerkit/internal/demo"
)

// Column widths of the item table.
const (
	colWidthID      = 10
	colWidthKind    = 10
	colWidthCreated = 16
	colWidthTitle   = 44

	createdLayout = "2006-01-02 15:04"
)

// ItemHeader is the column header matching RenderItem rows.
func ItemHeader() string {
	return fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		colWidthID, "ID",
		colWidthKind, "KIND",
		colWidthCreated, "CREATED",
		colWidthTitle, "TITLE",
	)
}

// RenderItem renders one catalog item as a table row.
func RenderItem(it demo.Item, selected bool) string {
	row := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		colWidthID, truncate(it.ID, colWidthID),
		colWidthKind, truncate(it.Kind, colWidthKind),
		colWidthCreated, it.CreatedAt.UTC().Format(createdLayout),
		colWidthTitle, truncate(it.Title, colWidthTitle),
	)
	if selected {
		return selectedStyle.Render(row)
	}
	return row
}

// RenderItemDetail renders every field of an item.
func RenderItemDetail(it demo.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:      %s\n", it.ID)
	fmt.Fprintf(&sb, "Kind:    %s\n", it.Kind)
	fmt.Fprintf(&sb, "Title:   %s\n", it.Title)
	fmt.Fprintf(&sb, "Created: %s", it.CreatedAt.UTC().Format(time.RFC3339))
	return sb.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
