package pagination

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// Window validation errors.
var (
	ErrNegativeWindow  = errors.New("window values cannot be negative")
	ErrPageAndOffset   = errors.New("--page and --offset are mutually exclusive")
	ErrPageWithoutSize = errors.New("--page needs --per-page > 0")
	ErrSizeWithoutPage = errors.New("--per-page needs --page >= 1")
)

// Window selects part of an accumulated list for printing, either by offset
// (Limit, Offset) or by page (Page, PerPage). The zero Window selects
// everything.
type Window struct {
	// Limit caps the number of items printed. Zero means no cap.
	Limit  int
	Offset int
	// Page is 1-based; zero disables page mode.
	Page    int
	PerPage int
}

// AddFlags registers the window flags on fs.
func (w *Window) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&w.Limit, "limit", 0, "print at most this many items (0 = all)")
	fs.IntVar(&w.Offset, "offset", 0, "skip this many items before printing")
	fs.IntVar(&w.Page, "page", 0, "print this 1-based page of the accumulated list")
	fs.IntVar(&w.PerPage, "per-page", 0, "items per printed page, used with --page")
}

// Validate reports inconsistent flag combinations.
func (w Window) Validate() error {
	fields := []struct {
		flag  string
		value int
	}{{"limit", w.Limit}, {"offset", w.Offset}, {"page", w.Page}, {"per-page", w.PerPage}}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: --%s=%d", ErrNegativeWindow, f.flag, f.value)
		}
	}
	switch {
	case w.Page > 0 && w.Offset > 0:
		return ErrPageAndOffset
	case w.Page > 0 && w.PerPage == 0:
		return ErrPageWithoutSize
	case w.Page == 0 && w.PerPage > 0:
		return ErrSizeWithoutPage
	}
	return nil
}

// Paged reports whether the window is in page mode.
func (w Window) Paged() bool {
	return w.Page > 0
}

// Bounds returns the [start, end) range the window selects from n items. A
// page past the end is clamped to the last page; an offset past the end
// selects nothing.
func (w Window) Bounds(n int) (int, int) {
	start, size := w.Offset, w.Limit
	if w.Paged() {
		start = (w.Page - 1) * w.PerPage
		size = w.PerPage
		if w.Limit > 0 {
			size = w.Limit
		}
		if n > 0 && start >= n {
			start = ((n - 1) / w.PerPage) * w.PerPage
		}
	}

	start = min(start, n)
	end := n
	if size > 0 {
		end = min(start+size, n)
	}
	return start, end
}

// Apply returns the items selected by w. The result shares storage with items.
func Apply[T any](w Window, items []T) []T {
	start, end := w.Bounds(len(items))
	return items[start:end]
}
