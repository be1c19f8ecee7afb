// Package rest pages through JSON list endpoints that hand back a "more" link.
//
// The first page is requested as GET {endpoint}?q={query}&limit={n}. Every
// response has the shape
//
//	{"items": [...], "more": "/v1/items?cursor=..."}
//
// where "more" is an absolute URL, a path, or empty on the last page. Paths are
// resolved against the endpoint, so servers can use either URL or path
// continuation.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// Query parameter names.
const (
	ParamQuery  = "q"
	ParamLimit  = "limit"
	ParamCursor = "cursor"
)

// maxErrorBody caps how much of an error response is kept for the error message.
const maxErrorBody = 512

// Response is the JSON envelope of one page.
type Response[T any] struct {
	Items []T    `json:"items"`
	More  string `json:"more,omitempty"`
}

// Loader fetches pages over HTTP.
type Loader[T any] struct {
	base     *url.URL
	client   *http.Client
	headers  map[string]string
	pageSize int
}

// New builds a loader for src. A nil client gets one with src.Timeout.
func New[T any](src transport.Source, client *http.Client) (*Loader[T], error) {
	src, err := src.Normalize()
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrInvalidEndpoint, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", transport.ErrInvalidEndpoint, base.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: src.Timeout}
	}
	return &Loader[T]{
		base:     base,
		client:   client,
		headers:  src.Headers,
		pageSize: src.PageSize,
	}, nil
}

// FetchFirst implements paginator.Loader.
func (l *Loader[T]) FetchFirst(ctx context.Context, query string) (paginator.Page[T], error) {
	u := *l.base
	params := u.Query()
	params.Set(ParamQuery, query)
	params.Set(ParamLimit, strconv.Itoa(l.pageSize))
	u.RawQuery = params.Encode()
	return l.get(ctx, &u)
}

// FetchNext implements paginator.Loader. The cursor is the "more" link of
// the previous page.
func (l *Loader[T]) FetchNext(ctx context.Context, cursor paginator.Cursor) (paginator.Page[T], error) {
	ref, err := url.Parse(string(cursor))
	if err != nil {
		return paginator.Page[T]{}, fmt.Errorf("%w: %w", transport.ErrInvalidCursor, err)
	}
	return l.get(ctx, l.base.ResolveReference(ref))
}

// Close releases idle connections.
func (l *Loader[T]) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func (l *Loader[T]) get(ctx context.Context, u *url.URL) (paginator.Page[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return paginator.Page[T]{}, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range l.headers {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return paginator.Page[T]{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return paginator.Page[T]{}, fmt.Errorf("%w: %s: %s", transport.ErrUnexpectedStatus, resp.Status, body)
	}

	var page Response[T]
	if err = json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return paginator.Page[T]{}, fmt.Errorf("%w: %w", transport.ErrDecode, err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	return paginator.Page[T]{
		Items:      page.Items,
		NextCursor: paginator.Cursor(page.More),
	}, nil
}
