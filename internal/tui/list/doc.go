// Package listview provides a virtual scrolling list for Bubble Tea programs.
//
// Only the rows inside the viewport, plus a small buffer, are rendered, so a
// list stays responsive while a paginator keeps appending pages to it. The
// browse screen calls SetItems on every accumulated update and asks NearEnd
// whether it is time to request the next page.
package listview
