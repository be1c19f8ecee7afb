// Package demo serves a deterministic, in-memory item catalog over every
// transport pagerkit can page through. `pagerkit serve` runs it, and the
// transport tests use it as their backend.
package demo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// DefaultCatalogSize is the number of items generated by NewCatalog(0).
const DefaultCatalogSize = 240

// Item is one entry of the demo catalog.
type Item struct {
	ID        string    `json:"id"         yaml:"id"`
	Title     string    `json:"title"      yaml:"title"`
	Kind      string    `json:"kind"       yaml:"kind"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ItemKey identifies items for distinct merging.
func ItemKey(it Item) string {
	return it.ID
}

// ErrBadCursor is returned when a continuation token cannot be decoded.
var ErrBadCursor = errors.New("demo: bad cursor")

//nolint:gochecknoglobals // Fixed vocabulary for generated items.
var (
	kinds    = []string{"activity", "message", "project", "profile", "discovery"}
	subjects = []string{
		"launch", "update", "backer", "comment", "reward",
		"survey", "creator", "milestone", "shipping", "thanks",
	}
)

// epoch anchors generated timestamps so output is reproducible.
//
//nolint:gochecknoglobals // Constant reference time.
var epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// Catalog is an immutable, ordered list of items.
type Catalog struct {
	items []Item
}

// NewCatalog generates size items (DefaultCatalogSize when size <= 0).
func NewCatalog(size int) *Catalog {
	if size <= 0 {
		size = DefaultCatalogSize
	}
	items := make([]Item, size)
	for i := range items {
		kind := kinds[i%len(kinds)]
		subject := subjects[(i/len(kinds))%len(subjects)]
		items[i] = Item{
			ID:        fmt.Sprintf("item-%04d", i+1),
			Title:     fmt.Sprintf("%s %s #%d", strings.ToUpper(subject[:1])+subject[1:], kind, i+1),
			Kind:      kind,
			CreatedAt: epoch.Add(time.Duration(i) * time.Hour),
		}
	}
	return &Catalog{items: items}
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Filter returns the items matching query, in catalog order. A query matches
// an item when it is a case-insensitive substring of its title or kind; the
// empty query matches everything.
func (c *Catalog) Filter(query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.items
	}
	var out []Item
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(it.Kind, q) {
			out = append(out, it)
		}
	}
	return out
}

// token is the server-side continuation state.
type token struct {
	Query  string `json:"q"`
	Offset int    `json:"o"`
}

// PageOptions shape how Page slices the catalog.
type PageOptions struct {
	// Overlap repeats the last item of a page at the start of the next one,
	// the way offset pagination behaves when the list grows between requests.
	Overlap bool
}

// Page returns up to limit items for query starting at offset, and the token
// of the following page (NoCursor when this page is the last).
func (c *Catalog) Page(query string, offset, limit int, opts PageOptions) ([]Item, paginator.Cursor, error) {
	if limit <= 0 {
		limit = transport.DefaultPageSize
	}
	matches := c.Filter(query)
	if offset < 0 || offset > len(matches) {
		return nil, paginator.NoCursor, fmt.Errorf("%w: offset %d out of range", ErrBadCursor, offset)
	}

	end := min(offset+limit, len(matches))
	page := append([]Item{}, matches[offset:end]...)
	if end >= len(matches) {
		return page, paginator.NoCursor, nil
	}

	next := end
	if opts.Overlap && next > offset+1 {
		next--
	}
	cursor, err := transport.EncodeCursor(token{Query: query, Offset: next})
	if err != nil {
		return nil, paginator.NoCursor, err
	}
	return page, cursor, nil
}

// Continue decodes a token produced by Page and returns the page it points to.
func (c *Catalog) Continue(cursor paginator.Cursor, limit int, opts PageOptions) ([]Item, paginator.Cursor, error) {
	var tok token
	if err := transport.DecodeCursor(cursor, &tok); err != nil {
		return nil, paginator.NoCursor, fmt.Errorf("%w: %w", ErrBadCursor, err)
	}
	return c.Page(tok.Query, tok.Offset, limit, opts)
}

// Lookup returns a page for either a first request (empty cursor) or a
// continuation.
func (c *Catalog) Lookup(query string, cursor paginator.Cursor, limit int, opts PageOptions) ([]Item, paginator.Cursor, error) {
	if cursor.IsNone() {
		return c.Page(query, 0, limit, opts)
	}
	return c.Continue(cursor, limit, opts)
}
