// Package ws pages through a list served over a WebSocket.
//
// Each page is one request/response exchange of JSON text frames:
//
//	request:  {"id": 7, "query": "...", "cursor": "...", "limit": 25}
//	response: {"id": 7, "items": [...], "next_cursor": "...", "error": ""}
//
// The connection is dialed on first use and redialed after any failure.
// Exchanges are serialised, so a loader shared by several paginators sends
// one request at a time.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// Request is the frame sent for every page.
type Request struct {
	ID     uint64 `json:"id"`
	Query  string `json:"query,omitempty"`
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit"`
}

// Response is the frame answering a Request.
type Response[T any] struct {
	ID         uint64 `json:"id"`
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Loader fetches pages over a single WebSocket connection.
type Loader[T any] struct {
	endpoint string
	headers  map[string]string
	pageSize int
	timeout  time.Duration
	dialer   *websocket.Dialer

	// afterFunc is context.AfterFunc, swapped in tests.
	afterFunc func(context.Context, func()) func() bool

	mu     sync.Mutex
	conn   *websocket.Conn
	seq    uint64
	closed bool
}

// New builds a loader for src, whose endpoint must be a ws:// or wss:// URL.
// Nothing is dialed until the first fetch.
func New[T any](src transport.Source) (*Loader[T], error) {
	src, err := src.Normalize()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(src.Endpoint)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, fmt.Errorf("%w: %q is not a ws:// or wss:// URL", transport.ErrInvalidEndpoint, src.Endpoint)
	}
	return &Loader[T]{
		endpoint:  src.Endpoint,
		headers:   src.Headers,
		pageSize:  src.PageSize,
		timeout:   src.Timeout,
		dialer:    &websocket.Dialer{HandshakeTimeout: src.Timeout},
		afterFunc: context.AfterFunc,
	}, nil
}

// FetchFirst implements paginator.Loader.
func (l *Loader[T]) FetchFirst(ctx context.Context, query string) (paginator.Page[T], error) {
	return l.exchange(ctx, Request{Query: query})
}

// FetchNext implements paginator.Loader.
func (l *Loader[T]) FetchNext(ctx context.Context, cursor paginator.Cursor) (paginator.Page[T], error) {
	return l.exchange(ctx, Request{Cursor: string(cursor)})
}

// Close closes the connection. Later fetches fail with paginator.ErrClosed.
func (l *Loader[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return l.dropLocked()
}

func (l *Loader[T]) exchange(ctx context.Context, req Request) (paginator.Page[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return paginator.Page[T]{}, paginator.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return paginator.Page[T]{}, err
	}

	conn, err := l.connectLocked(ctx)
	if err != nil {
		return paginator.Page[T]{}, err
	}

	l.seq++
	req.ID = l.seq
	req.Limit = l.pageSize

	deadline := time.Now().Add(l.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	// Cancellation unblocks the read by expiring the deadline now. The
	// callback may start after the read returned, so it only touches the
	// connection while this exchange is still running.
	var (
		cancelMu sync.Mutex
		finished bool
	)
	stop := l.afterFunc(ctx, func() {
		cancelMu.Lock()
		defer cancelMu.Unlock()
		if !finished {
			_ = conn.SetReadDeadline(time.Now())
		}
	})

	var resp Response[T]
	if err = conn.WriteJSON(req); err == nil {
		err = conn.ReadJSON(&resp)
	}

	cancelMu.Lock()
	finished = true
	cancelMu.Unlock()
	stop()

	if err != nil {
		_ = l.dropLocked()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return paginator.Page[T]{}, ctxErr
		}
		return paginator.Page[T]{}, fmt.Errorf("%w: %w", transport.ErrDecode, err)
	}

	if resp.ID != req.ID {
		_ = l.dropLocked()
		return paginator.Page[T]{}, fmt.Errorf("%w: response id %d does not match request id %d",
			transport.ErrDecode, resp.ID, req.ID)
	}
	if resp.Error != "" {
		return paginator.Page[T]{}, fmt.Errorf("%w: %s", transport.ErrRemote, resp.Error)
	}
	if resp.Items == nil {
		resp.Items = []T{}
	}
	return paginator.Page[T]{Items: resp.Items, NextCursor: paginator.Cursor(resp.NextCursor)}, nil
}

func (l *Loader[T]) connectLocked(ctx context.Context) (*websocket.Conn, error) {
	if l.conn != nil {
		return l.conn, nil
	}
	header := make(map[string][]string, len(l.headers))
	for k, v := range l.headers {
		header[k] = []string{v}
	}
	conn, resp, err := l.dialer.DialContext(ctx, l.endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", l.endpoint, err)
	}
	l.conn = conn
	return conn, nil
}

func (l *Loader[T]) dropLocked() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}
