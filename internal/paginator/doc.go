// Package paginator coordinates on-demand loading of remote pages into one
// growing list.
//
// A Paginator is driven by two signals from its caller:
//   - StartOverWith(query): begin a new session for query (equal queries are ignored)
//   - NextPage(): load the page after the last one, unless exhausted or busy
//
// and publishes three observables: Accumulated, IsFetching and PageIndex.
//
// The paginator does not know how pages are transported. Callers supply a
// Loader that fetches the first page for a query and any later page for a
// cursor; REST "more" URLs, GraphQL end cursors and path continuations are all
// expressed as a Cursor.
//
// All session state is owned by a single goroutine fed by an event queue.
// Loader calls run on their own goroutines and report back through the same
// queue. A result whose session has been superseded is dropped on arrival, and
// a loader failure is turned into an empty page so the list simply stops
// growing. There is no error channel.
package paginator
