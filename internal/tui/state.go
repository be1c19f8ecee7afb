package tui

// ViewState is the screen a model is currently showing.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateQuitting
)

// String implements fmt.Stringer.
func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Key names as reported by tea.KeyMsg.String.
const (
	keyQuit    = "q"
	keyCtrlC   = "ctrl+c"
	keyEnter   = "enter"
	keyEsc     = "esc"
	keySlash   = "/"
	keyRefresh = "r"
	keyMore    = "n"
)

// Layout defaults used until the first tea.WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 24
	minHeight     = 3

	// chromeHeight is the number of lines taken by the title, column
	// header, status line and help line.
	chromeHeight = 6

	filterInputCharLimit = 120
	filterInputWidth     = 40

	// prefetchThreshold is how close to the last row the cursor gets before
	// the next page is requested.
	prefetchThreshold = 5
)
