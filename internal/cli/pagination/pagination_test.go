package pagination

import (
	"cmp"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		window  Window
		wantErr error
	}{
		{name: "zero", window: Window{}},
		{name: "offset mode", window: Window{Limit: 10, Offset: 20}},
		{name: "page mode", window: Window{Page: 2, PerPage: 10}},
		{name: "page mode with limit", window: Window{Page: 1, PerPage: 10, Limit: 3}},
		{name: "negative limit", window: Window{Limit: -1}, wantErr: ErrNegativeWindow},
		{name: "negative offset", window: Window{Offset: -5}, wantErr: ErrNegativeWindow},
		{name: "negative page", window: Window{Page: -1}, wantErr: ErrNegativeWindow},
		{name: "negative per-page", window: Window{PerPage: -1}, wantErr: ErrNegativeWindow},
		{name: "page and offset", window: Window{Page: 2, PerPage: 5, Offset: 3}, wantErr: ErrPageAndOffset},
		{name: "page without size", window: Window{Page: 2}, wantErr: ErrPageWithoutSize},
		{name: "size without page", window: Window{PerPage: 5}, wantErr: ErrSizeWithoutPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWindow_AddFlags(t *testing.T) {
	var w Window
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	w.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--page", "3", "--per-page", "20", "--limit", "5"}))
	assert.Equal(t, Window{Page: 3, PerPage: 20, Limit: 5}, w)
}

func TestApply(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name   string
		window Window
		items  []int
		want   []int
	}{
		{name: "everything", window: Window{}, items: items, want: items},
		{name: "limit", window: Window{Limit: 3}, items: items, want: []int{0, 1, 2}},
		{name: "offset", window: Window{Offset: 7}, items: items, want: []int{7, 8, 9}},
		{name: "offset and limit", window: Window{Offset: 2, Limit: 2}, items: items, want: []int{2, 3}},
		{name: "offset past end", window: Window{Offset: 20}, items: items, want: []int{}},
		{name: "limit past end", window: Window{Offset: 8, Limit: 5}, items: items, want: []int{8, 9}},
		{name: "first page", window: Window{Page: 1, PerPage: 4}, items: items, want: []int{0, 1, 2, 3}},
		{name: "last partial page", window: Window{Page: 3, PerPage: 4}, items: items, want: []int{8, 9}},
		{name: "page past end clamps", window: Window{Page: 9, PerPage: 4}, items: items, want: []int{8, 9}},
		{name: "limit inside page", window: Window{Page: 2, PerPage: 4, Limit: 1}, items: items, want: []int{4}},
		{name: "empty input", window: Window{Page: 2, PerPage: 4}, items: []int{}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.window, tt.items))
		})
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		total  int
		want   Meta
	}{
		{
			name:  "whole list is one page",
			total: 23,
			want:  Meta{CurrentPage: 1, PageSize: 23, TotalPages: 1, TotalItems: 23},
		},
		{
			name:   "page mode",
			window: Window{Page: 2, PerPage: 10},
			total:  23,
			want: Meta{
				CurrentPage: 2, PageSize: 10, TotalPages: 3, TotalItems: 23,
				HasPrevious: true, HasNext: true,
			},
		},
		{
			name:   "offset mode derives the page",
			window: Window{Limit: 5, Offset: 10},
			total:  12,
			want: Meta{
				CurrentPage: 3, PageSize: 5, TotalPages: 3, TotalItems: 12,
				HasPrevious: true,
			},
		},
		{
			name:  "empty list",
			total: 0,
			want:  Meta{CurrentPage: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMeta(tt.window, tt.total))
		})
	}
}

func TestMeta_WithFetch(t *testing.T) {
	m := NewMeta(Window{}, 4).WithFetch(2, true)
	assert.Equal(t, 2, m.PagesLoaded)
	assert.True(t, m.Exhausted)
	assert.Equal(t, 4, m.TotalItems)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		input   string
		want    SortSpec
		wantErr error
	}{
		{input: "", want: SortSpec{}},
		{input: "title", want: SortSpec{Field: "title"}},
		{input: " created_at:desc ", want: SortSpec{Field: "created_at", Desc: true}},
		{input: "kind:ASC", want: SortSpec{Field: "kind"}},
		{input: "id:up", wantErr: ErrInvalidSortOrder},
		{input: ":desc", wantErr: ErrInvalidSortFormat},
		{input: "a:b:c", wantErr: ErrInvalidSortFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSort(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type row struct {
	name string
	size int
}

func newRowSorter() *Sorter[row] {
	return NewSorter(map[string]func(a, b row) int{
		"name": func(a, b row) int { return strings.Compare(a.name, b.name) },
		"size": func(a, b row) int { return cmp.Compare(a.size, b.size) },
	})
}

func TestSorter(t *testing.T) {
	rows := []row{{"b", 2}, {"a", 2}, {"c", 1}}
	s := newRowSorter()

	assert.Equal(t, []string{"name", "size"}, s.Fields())

	tests := []struct {
		name string
		spec SortSpec
		want []row
	}{
		{name: "no field keeps order", spec: SortSpec{}, want: rows},
		{name: "name asc", spec: SortSpec{Field: "name"}, want: []row{{"a", 2}, {"b", 2}, {"c", 1}}},
		{name: "size desc is stable", spec: SortSpec{Field: "size", Desc: true}, want: []row{{"b", 2}, {"a", 2}, {"c", 1}}},
		{name: "unknown field", spec: SortSpec{Field: "color"}, want: rows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sort(rows, tt.spec))
		})
	}
	assert.Equal(t, []row{{"b", 2}, {"a", 2}, {"c", 1}}, rows, "input is never modified")
}

func TestSorter_Validate(t *testing.T) {
	s := newRowSorter()
	assert.NoError(t, s.Validate(SortSpec{}))
	assert.NoError(t, s.Validate(SortSpec{Field: "size"}))

	err := s.Validate(SortSpec{Field: "color"})
	require.ErrorIs(t, err, ErrInvalidSortField)
	assert.Contains(t, err.Error(), "valid: name, size")
}
