package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/pagerkit/internal/paginator"
	listview "github.com/rshade/pagerkit/internal/tui/list"
)

// BrowseOptions configure a BrowseModel.
type BrowseOptions[T any] struct {
	// Title is shown above the list.
	Title string
	// Query is the query the first session starts with.
	Query string
	// Header is the column header line. Empty hides it.
	Header string
	// Row renders a list row. Defaults to fmt.Sprint of the item.
	Row listview.RenderFunc[T]
	// Detail renders the detail screen. Nil disables it.
	Detail func(T) string
}

// Messages carrying paginator updates into the Bubble Tea loop.
type (
	accumulatedMsg[T any] struct{ items []T }
	fetchingMsg           struct{ fetching bool }
	pageIndexMsg          struct{ index int }
	watchClosedMsg        struct{}
)

// BrowseModel is an interactive, infinitely scrolling view over a paginator.
// Typing "/" edits the query and starts a new session, scrolling close to
// the bottom loads the next page, and "r" refreshes the current query.
type BrowseModel[T any] struct {
	pager *paginator.Paginator[string, T]
	opts  BrowseOptions[T]

	itemsCh    <-chan []T
	fetchingCh <-chan bool
	indexCh    <-chan int

	state   ViewState
	list    *listview.VirtualListModel[T]
	input   textinput.Model
	loading *LoadingState
	printer *message.Printer

	showFilter bool
	fetching   bool
	pageIndex  int
	// wantMore records a load-more request that arrived while a fetch was
	// in flight, replayed once when it settles.
	wantMore bool

	width  int
	height int
}

// NewBrowseModel builds a browse screen over pager. Paginator updates are
// observed until ctx is done.
func NewBrowseModel[T any](
	ctx context.Context,
	pager *paginator.Paginator[string, T],
	opts BrowseOptions[T],
) *BrowseModel[T] {
	if opts.Row == nil {
		opts.Row = func(item T, selected bool) string {
			row := fmt.Sprint(item)
			if selected {
				return selectedStyle.Render(row)
			}
			return row
		}
	}

	m := &BrowseModel[T]{
		pager:      pager,
		opts:       opts,
		itemsCh:    pager.Accumulated().Watch(ctx),
		fetchingCh: pager.IsFetching().Watch(ctx),
		indexCh:    pager.PageIndex().Watch(ctx),
		state:      ViewStateLoading,
		input:      newFilterInput(opts.Query),
		loading:    NewLoadingState("Loading first page..."),
		printer:    message.NewPrinter(language.English),
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.list = listview.NewVirtualListModel[T](nil, m.listHeight(), m.width, opts.Row)
	return m
}

func newFilterInput(query string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	ti.SetValue(query)
	return ti
}

// Init starts the first session and begins observing the paginator.
func (m *BrowseModel[T]) Init() tea.Cmd {
	m.pager.StartOverWith(m.opts.Query)
	return tea.Batch(
		m.loading.Init(),
		m.waitAccumulated(),
		m.waitFetching(),
		m.waitPageIndex(),
	)
}

func listen[V any](ch <-chan V, wrap func(V) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return wrap(v)
	}
}

func (m *BrowseModel[T]) waitAccumulated() tea.Cmd {
	return listen(m.itemsCh, func(items []T) tea.Msg { return accumulatedMsg[T]{items: items} })
}

func (m *BrowseModel[T]) waitFetching() tea.Cmd {
	return listen(m.fetchingCh, func(v bool) tea.Msg { return fetchingMsg{fetching: v} })
}

func (m *BrowseModel[T]) waitPageIndex() tea.Cmd {
	return listen(m.indexCh, func(v int) tea.Msg { return pageIndexMsg{index: v} })
}

// Update handles paginator updates, keys and resizes.
func (m *BrowseModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.listHeight())
		return m, nil

	case accumulatedMsg[T]:
		m.list.SetItems(msg.items)
		m.syncLoading()
		m.maybeLoadMore()
		return m, m.waitAccumulated()

	case fetchingMsg:
		m.fetching = msg.fetching
		m.syncLoading()
		if !m.fetching && m.wantMore {
			m.maybeLoadMore()
		}
		return m, m.waitFetching()

	case pageIndexMsg:
		m.pageIndex = msg.index
		return m, m.waitPageIndex()

	case watchClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m.syncLoading()
	return m, m.loading.Update(msg)
}

// syncLoading leaves the loading screen once the first page has settled.
// Spinner ticks call it too, so a settle observed only through the snapshot
// is picked up on the next frame.
func (m *BrowseModel[T]) syncLoading() {
	if m.state != ViewStateLoading {
		return
	}
	if m.list.ItemCount() > 0 {
		m.state = ViewStateList
		return
	}
	switch m.pager.Snapshot().Phase {
	case paginator.PhaseIdle, paginator.PhaseFetchingFirst:
	case paginator.PhaseReady, paginator.PhaseFetchingNext, paginator.PhaseExhausted:
		m.state = ViewStateList
	}
}

func (m *BrowseModel[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	switch m.state {
	case ViewStateDetail:
		switch msg.String() {
		case keyQuit:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEsc, keyEnter:
			m.state = ViewStateList
		}
		return m, nil
	case ViewStateQuitting:
		return m, nil
	case ViewStateLoading, ViewStateList:
	}

	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keySlash:
		m.showFilter = true
		return m, m.input.Focus()
	case keyRefresh:
		m.pager.Refresh()
		return m, nil
	case keyMore:
		m.pager.NextPage()
		return m, nil
	case keyEnter:
		if m.opts.Detail != nil && m.list.GetSelectedItem() != nil {
			m.state = ViewStateDetail
		}
		return m, nil
	}

	_, cmd := m.list.Update(msg)
	m.maybeLoadMore()
	return m, cmd
}

func (m *BrowseModel[T]) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.showFilter = false
		m.input.Blur()
		query := strings.TrimSpace(m.input.Value())
		m.opts.Query = query
		m.list.SetSelected(0)
		m.pager.StartOverWith(query)
		return m, nil
	case keyEsc:
		m.showFilter = false
		m.input.Blur()
		m.input.SetValue(m.opts.Query)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// maybeLoadMore asks for the next page once the cursor nears the bottom of
// the list. The paginator ignores the request when the session is exhausted.
func (m *BrowseModel[T]) maybeLoadMore() {
	if !m.list.NearEnd(prefetchThreshold) {
		m.wantMore = false
		return
	}
	if m.fetching {
		m.wantMore = true
		return
	}
	m.wantMore = false
	m.pager.NextPage()
}

func (m *BrowseModel[T]) listHeight() int {
	return max(m.height-chromeHeight, minHeight)
}

// View renders the current screen.
func (m *BrowseModel[T]) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return RenderLoading(m.loading)
	case ViewStateDetail:
		if item := m.list.GetSelectedItem(); item != nil && m.opts.Detail != nil {
			return lipgloss.JoinVertical(lipgloss.Left,
				boxStyle.Render(m.opts.Detail(*item)),
				helpStyle.Render("[Esc] Back  [q] Quit"),
			)
		}
	case ViewStateList:
	}

	parts := make([]string, 0, 6)
	if m.opts.Title != "" {
		parts = append(parts, titleStyle.Render(m.opts.Title))
	}
	if m.opts.Header != "" {
		parts = append(parts, headerStyle.Render(m.opts.Header))
	}
	if m.list.ItemCount() == 0 {
		parts = append(parts, emptyStyle.Render("No items."))
	} else {
		parts = append(parts, m.list.View())
	}
	parts = append(parts, m.statusLine())
	if m.showFilter {
		parts = append(parts, "Search: "+m.input.View())
	}
	parts = append(parts, helpStyle.Render(
		"[/] Search  [r] Refresh  [n] Next page  [↑↓/jk] Navigate  [Enter] Details  [q] Quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *BrowseModel[T]) statusLine() string {
	snap := m.pager.Snapshot()

	fields := []string{m.printer.Sprintf("%d items", m.list.ItemCount())}
	if m.fetching {
		fields = append(fields, fmt.Sprintf("%s loading page %d", m.loading.Spinner(), m.pageIndex))
	} else {
		fields = append(fields, m.printer.Sprintf("page %d", m.pageIndex))
	}
	if snap.Exhausted {
		fields = append(fields, "end of results")
	}
	if m.opts.Query != "" {
		fields = append(fields, fmt.Sprintf("query %q", m.opts.Query))
	}
	return statusStyle.Render(strings.Join(fields, " │ "))
}

// State returns the screen currently shown.
func (m *BrowseModel[T]) State() ViewState {
	return m.state
}

// Query returns the query of the most recently started session.
func (m *BrowseModel[T]) Query() string {
	return m.opts.Query
}
