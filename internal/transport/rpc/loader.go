package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// Loader calls PageService.List for every page.
type Loader[T any] struct {
	conn     grpc.ClientConnInterface
	closer   func() error
	pageSize int
}

// Dial connects to src.Endpoint (a gRPC target such as "localhost:7070") with
// plaintext credentials.
func Dial[T any](src transport.Source, opts ...grpc.DialOption) (*Loader[T], error) {
	src, err := src.Normalize()
	if err != nil {
		return nil, err
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(src.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrInvalidEndpoint, err)
	}

	l := NewLoader[T](conn, src.PageSize)
	l.closer = conn.Close
	return l, nil
}

// NewLoader pages over an existing connection. The caller keeps ownership of
// conn.
func NewLoader[T any](conn grpc.ClientConnInterface, pageSize int) *Loader[T] {
	if pageSize <= 0 {
		pageSize = transport.DefaultPageSize
	}
	return &Loader[T]{conn: conn, pageSize: pageSize}
}

// FetchFirst implements paginator.Loader.
func (l *Loader[T]) FetchFirst(ctx context.Context, query string) (paginator.Page[T], error) {
	return l.list(ctx, query, paginator.NoCursor)
}

// FetchNext implements paginator.Loader.
func (l *Loader[T]) FetchNext(ctx context.Context, cursor paginator.Cursor) (paginator.Page[T], error) {
	return l.list(ctx, "", cursor)
}

// Close closes the connection if the loader dialed it.
func (l *Loader[T]) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

func (l *Loader[T]) list(ctx context.Context, query string, cursor paginator.Cursor) (paginator.Page[T], error) {
	req, err := structpb.NewStruct(map[string]any{
		FieldQuery:  query,
		FieldCursor: string(cursor),
		FieldLimit:  l.pageSize,
	})
	if err != nil {
		return paginator.Page[T]{}, err
	}

	resp := new(structpb.Struct)
	if err = l.conn.Invoke(ctx, FullMethodList, req, resp); err != nil {
		return paginator.Page[T]{}, fmt.Errorf("%w: %w", transport.ErrRemote, err)
	}
	return DecodePage[T](resp)
}

// DecodePage converts a List response into a page.
func DecodePage[T any](resp *structpb.Struct) (paginator.Page[T], error) {
	fields := resp.GetFields()
	list := fields[FieldItems].GetListValue()

	items := make([]T, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		raw, err := v.MarshalJSON()
		if err != nil {
			return paginator.Page[T]{}, fmt.Errorf("%w: item %d: %w", transport.ErrDecode, i, err)
		}
		var item T
		if err = json.Unmarshal(raw, &item); err != nil {
			return paginator.Page[T]{}, fmt.Errorf("%w: item %d: %w", transport.ErrDecode, i, err)
		}
		items = append(items, item)
	}

	return paginator.Page[T]{
		Items:      items,
		NextCursor: paginator.Cursor(fields[FieldNextCursor].GetStringValue()),
	}, nil
}

// EncodePage builds a List response from items, which must marshal to JSON
// objects or scalars.
func EncodePage[T any](items []T, next paginator.Cursor) (*structpb.Struct, error) {
	values := make([]any, 0, len(items))
	for i, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("encoding item %d: %w", i, err)
		}
		var generic any
		if err = json.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("encoding item %d: %w", i, err)
		}
		values = append(values, generic)
	}
	return structpb.NewStruct(map[string]any{
		FieldItems:      values,
		FieldNextCursor: string(next),
	})
}
