package paginator

import "context"

// Cursor is an opaque continuation token understood only by the Loader that
// produced it: a URL, a path, or a GraphQL end cursor.
type Cursor string

// NoCursor means there are no further pages.
const NoCursor Cursor = ""

// IsNone reports whether c marks the end of the sequence.
func (c Cursor) IsNone() bool {
	return c == NoCursor
}

// String implements fmt.Stringer.
func (c Cursor) String() string {
	return string(c)
}

// Page is one fetched batch of items plus the cursor of the page after it.
type Page[T any] struct {
	Items      []T
	NextCursor Cursor
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return !p.NextCursor.IsNone()
}

// Loader fetches pages for a paginator. Implementations adapt a transport
// response into a Page; they may block and should honour ctx.
type Loader[Q comparable, T any] interface {
	FetchFirst(ctx context.Context, query Q) (Page[T], error)
	FetchNext(ctx context.Context, cursor Cursor) (Page[T], error)
}

// LoaderFuncs adapts two plain functions to the Loader interface.
type LoaderFuncs[Q comparable, T any] struct {
	First func(ctx context.Context, query Q) (Page[T], error)
	Next  func(ctx context.Context, cursor Cursor) (Page[T], error)
}

// FetchFirst calls l.First.
func (l LoaderFuncs[Q, T]) FetchFirst(ctx context.Context, query Q) (Page[T], error) {
	if l.First == nil {
		return Page[T]{}, ErrMissingLoaderFunc
	}
	return l.First(ctx, query)
}

// FetchNext calls l.Next.
func (l LoaderFuncs[Q, T]) FetchNext(ctx context.Context, cursor Cursor) (Page[T], error) {
	if l.Next == nil {
		return Page[T]{}, ErrMissingLoaderFunc
	}
	return l.Next(ctx, cursor)
}
