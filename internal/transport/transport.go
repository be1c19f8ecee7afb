package transport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rshade/pagerkit/internal/paginator"
)

// Transport kinds.
const (
	KindREST      = "rest"
	KindGraphQL   = "graphql"
	KindGRPC      = "grpc"
	KindWebSocket = "ws"
)

// Defaults shared by all adapters.
const (
	DefaultPageSize = 25
	MaxPageSize     = 500
	DefaultTimeout  = 10 * time.Second
)

// Sentinel errors.
var (
	ErrUnknownKind      = errors.New("unknown transport kind")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrDecode           = errors.New("decoding page response")
	ErrRemote           = errors.New("remote error")
	ErrInvalidCursor    = errors.New("invalid cursor")
	ErrInvalidPageSize  = errors.New("page size must be between 1 and 500")
)

// Source describes one remote list endpoint.
type Source struct {
	Name     string
	Kind     string
	Endpoint string
	PageSize int
	Timeout  time.Duration
	Headers  map[string]string
}

// Normalize fills defaults and validates the page size.
func (s Source) Normalize() (Source, error) {
	if s.Endpoint == "" {
		return s, fmt.Errorf("%w: source %q has no endpoint", ErrInvalidEndpoint, s.Name)
	}
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize < 1 || s.PageSize > MaxPageSize {
		return s, fmt.Errorf("%w: got %d", ErrInvalidPageSize, s.PageSize)
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s, nil
}

// Loader is a paginator loader over a string query that owns a connection.
type Loader[T any] interface {
	paginator.Loader[string, T]
	io.Closer
}

// EncodeCursor packs v into an opaque, URL-safe cursor.
func EncodeCursor(v any) (paginator.Cursor, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return paginator.NoCursor, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	return paginator.Cursor(base64.RawURLEncoding.EncodeToString(raw)), nil
}

// DecodeCursor unpacks a cursor produced by EncodeCursor into v.
func DecodeCursor(c paginator.Cursor, v any) error {
	if c.IsNone() {
		return fmt.Errorf("%w: empty cursor", ErrInvalidCursor)
	}
	raw, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	return nil
}
