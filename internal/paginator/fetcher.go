package paginator

import (
	"context"
	"fmt"
)

type fetchKind int

const (
	fetchFirst fetchKind = iota
	fetchNext
)

func (k fetchKind) String() string {
	if k == fetchFirst {
		return "first"
	}
	return "next"
}

// fetchRequest describes one loader call on behalf of a session.
type fetchRequest[Q comparable] struct {
	sessionID uint64
	kind      fetchKind
	query     Q
	cursor    Cursor
	pageIndex int
}

// fetchResult is a normalized loader outcome tagged with its session.
type fetchResult[T any] struct {
	sessionID uint64
	kind      fetchKind
	pageIndex int
	page      Page[T]

	// degraded marks a synthetic empty page standing in for a failure; err
	// holds the failure for logging only.
	degraded bool
	err      error
}

// fetcher wraps a Loader so that no call can fail or panic past it.
type fetcher[Q comparable, T any] struct {
	loader Loader[Q, T]
}

func (f fetcher[Q, T]) fetch(ctx context.Context, req fetchRequest[Q]) (res fetchResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = degrade[Q, T](req, fmt.Errorf("%w: %v", ErrLoaderPanic, r))
		}
	}()

	var (
		page Page[T]
		err  error
	)
	switch req.kind {
	case fetchFirst:
		page, err = f.loader.FetchFirst(ctx, req.query)
	case fetchNext:
		page, err = f.loader.FetchNext(ctx, req.cursor)
	}
	if err != nil {
		return degrade[Q, T](req, err)
	}

	return fetchResult[T]{
		sessionID: req.sessionID,
		kind:      req.kind,
		pageIndex: req.pageIndex,
		page:      page,
	}
}

// degrade builds the empty page that replaces a failed fetch. A failed next
// page keeps the cursor it was asked for; a failed first page has none.
func degrade[Q comparable, T any](req fetchRequest[Q], err error) fetchResult[T] {
	next := NoCursor
	if req.kind == fetchNext {
		next = req.cursor
	}
	return fetchResult[T]{
		sessionID: req.sessionID,
		kind:      req.kind,
		pageIndex: req.pageIndex,
		page:      Page[T]{Items: []T{}, NextCursor: next},
		degraded:  true,
		err:       err,
	}
}
