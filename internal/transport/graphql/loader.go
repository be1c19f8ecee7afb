// Package graphql pages through a Relay-style connection field.
//
// Every page is a POST of the configured document with the variables
// $query, $first and $after. The response must carry
//
//	{"data": {"<field>": {"nodes": [...], "pageInfo": {"endCursor": "...", "hasNextPage": true}}}}
//
// The paginator only hands a cursor to FetchNext, so the loader wraps the
// query and the server's endCursor into its own opaque cursor.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// DefaultField is the connection field read from the response.
const DefaultField = "items"

// DefaultDocument queries the demo catalog's connection.
const DefaultDocument = `query Items($query: String!, $first: Int!, $after: String) {
  items(query: $query, first: $first, after: $after) {
    nodes { id title kind created_at }
    pageInfo { endCursor hasNextPage }
  }
}`

const maxErrorBody = 512

// Request is the POST body of a GraphQL operation.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// PageInfo is the Relay page info block.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// Connection is one page of a connection field.
type Connection[T any] struct {
	Nodes    []T      `json:"nodes"`
	PageInfo PageInfo `json:"pageInfo"`
}

// Error is one entry of a GraphQL errors array.
type Error struct {
	Message string `json:"message"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []Error                    `json:"errors"`
}

// continuation is what the loader's cursor carries.
type continuation struct {
	Query string `json:"q"`
	After string `json:"a"`
}

// Options customise the operation.
type Options struct {
	Document string
	Field    string
}

// Loader fetches pages from a GraphQL endpoint.
type Loader[T any] struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
	pageSize int
	document string
	field    string
}

// New builds a loader for src. Zero Options select DefaultDocument and
// DefaultField.
func New[T any](src transport.Source, client *http.Client, opts Options) (*Loader[T], error) {
	src, err := src.Normalize()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(src.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", transport.ErrInvalidEndpoint, src.Endpoint)
	}
	if client == nil {
		client = &http.Client{Timeout: src.Timeout}
	}
	if opts.Document == "" {
		opts.Document = DefaultDocument
	}
	if opts.Field == "" {
		opts.Field = DefaultField
	}
	return &Loader[T]{
		endpoint: src.Endpoint,
		client:   client,
		headers:  src.Headers,
		pageSize: src.PageSize,
		document: opts.Document,
		field:    opts.Field,
	}, nil
}

// FetchFirst implements paginator.Loader.
func (l *Loader[T]) FetchFirst(ctx context.Context, query string) (paginator.Page[T], error) {
	return l.fetch(ctx, continuation{Query: query})
}

// FetchNext implements paginator.Loader.
func (l *Loader[T]) FetchNext(ctx context.Context, cursor paginator.Cursor) (paginator.Page[T], error) {
	var c continuation
	if err := transport.DecodeCursor(cursor, &c); err != nil {
		return paginator.Page[T]{}, err
	}
	return l.fetch(ctx, c)
}

// Close releases idle connections.
func (l *Loader[T]) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func (l *Loader[T]) fetch(ctx context.Context, c continuation) (paginator.Page[T], error) {
	vars := map[string]any{
		"query": c.Query,
		"first": l.pageSize,
		"after": nil,
	}
	if c.After != "" {
		vars["after"] = c.After
	}

	conn, err := l.do(ctx, Request{Query: l.document, Variables: vars})
	if err != nil {
		return paginator.Page[T]{}, err
	}

	page := paginator.Page[T]{Items: conn.Nodes}
	if page.Items == nil {
		page.Items = []T{}
	}
	if conn.PageInfo.HasNextPage && conn.PageInfo.EndCursor != "" {
		page.NextCursor, err = transport.EncodeCursor(continuation{Query: c.Query, After: conn.PageInfo.EndCursor})
		if err != nil {
			return paginator.Page[T]{}, err
		}
	}
	return page, nil
}

func (l *Loader[T]) do(ctx context.Context, body Request) (Connection[T], error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Connection[T]{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Connection[T]{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range l.headers {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Connection[T]{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Connection[T]{}, fmt.Errorf("%w: %s: %s", transport.ErrUnexpectedStatus, resp.Status, msg)
	}

	var out response
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Connection[T]{}, fmt.Errorf("%w: %w", transport.ErrDecode, err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return Connection[T]{}, fmt.Errorf("%w: %s", transport.ErrRemote, strings.Join(msgs, "; "))
	}

	raw, ok := out.Data[l.field]
	if !ok {
		return Connection[T]{}, fmt.Errorf("%w: field %q missing from data", transport.ErrDecode, l.field)
	}
	var conn Connection[T]
	if err = json.Unmarshal(raw, &conn); err != nil {
		return Connection[T]{}, fmt.Errorf("%w: %w", transport.ErrDecode, err)
	}
	return conn, nil
}
