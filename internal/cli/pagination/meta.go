package pagination

// Meta describes a printed window and the fetch it was cut from.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`

	// PagesLoaded is how many source pages the paginator fetched.
	PagesLoaded int `json:"pages_loaded" yaml:"pages_loaded"`
	// Exhausted reports whether the source has no further pages.
	Exhausted bool `json:"exhausted" yaml:"exhausted"`
}

// NewMeta describes w over total accumulated items. Without a page size the
// whole list counts as one page.
func NewMeta(w Window, total int) Meta {
	size := w.PerPage
	if !w.Paged() {
		size = w.Limit
	}
	if size == 0 {
		size = total
	}

	m := Meta{PageSize: size, TotalItems: total, CurrentPage: 1}
	if size > 0 {
		m.TotalPages = (total + size - 1) / size
	}
	switch {
	case w.Paged():
		m.CurrentPage = w.Page
	case size > 0:
		m.CurrentPage = w.Offset/size + 1
	}
	m.HasPrevious = m.CurrentPage > 1
	m.HasNext = m.CurrentPage < m.TotalPages
	return m
}

// WithFetch records the paginator state behind the window.
func (m Meta) WithFetch(pagesLoaded int, exhausted bool) Meta {
	m.PagesLoaded = pagesLoaded
	m.Exhausted = exhausted
	return m
}
