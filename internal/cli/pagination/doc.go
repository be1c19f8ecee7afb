// Package pagination shapes the lists printed by CLI commands.
//
// A Window selects a slice of the accumulated items (--limit/--offset or
// --page/--per-page), Meta describes that slice together with the fetch
// behind it, and Sorter orders items by named fields. None of it changes
// what is requested from a source.
package pagination
