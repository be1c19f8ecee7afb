package paginator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

type reply struct {
	page Page[string]
	err  error
}

// call is one loader invocation waiting for the test to answer it.
type call struct {
	kind   fetchKind
	query  string
	cursor Cursor
	ctx    context.Context
	answer chan reply
}

func (c call) respond(items []string, next Cursor) {
	c.answer <- reply{page: Page[string]{Items: items, NextCursor: next}}
}

func (c call) fail(err error) {
	c.answer <- reply{err: err}
}

// gatedLoader hands every call to the test and blocks until it is answered.
// It ignores ctx so that superseded fetches settle late, like a loader that
// does not support cancellation.
type gatedLoader struct {
	calls chan call
	stop  chan struct{}
}

func newGatedLoader(t *testing.T) *gatedLoader {
	t.Helper()
	l := &gatedLoader{
		calls: make(chan call, 16),
		stop:  make(chan struct{}),
	}
	t.Cleanup(func() { close(l.stop) })
	return l
}

func (l *gatedLoader) do(ctx context.Context, c call) (Page[string], error) {
	c.ctx = ctx
	c.answer = make(chan reply, 1)
	select {
	case l.calls <- c:
	case <-l.stop:
		return Page[string]{}, context.Canceled
	}
	select {
	case r := <-c.answer:
		return r.page, r.err
	case <-l.stop:
		return Page[string]{}, context.Canceled
	}
}

func (l *gatedLoader) FetchFirst(ctx context.Context, query string) (Page[string], error) {
	return l.do(ctx, call{kind: fetchFirst, query: query})
}

func (l *gatedLoader) FetchNext(ctx context.Context, cursor Cursor) (Page[string], error) {
	return l.do(ctx, call{kind: fetchNext, cursor: cursor})
}

func (l *gatedLoader) expectCall(t *testing.T) call {
	t.Helper()
	select {
	case c := <-l.calls:
		return c
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for loader call")
		return call{}
	}
}

func (l *gatedLoader) requireNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-l.calls:
		t.Fatalf("unexpected loader call: kind=%s query=%q cursor=%q", c.kind, c.query, c.cursor)
	case <-time.After(50 * time.Millisecond):
	}
}

func testContext() context.Context {
	return zerolog.New(io.Discard).WithContext(context.Background())
}

func newTestPaginator(
	t *testing.T,
	loader Loader[string, string],
	cfg Config[string, string],
) *Paginator[string, string] {
	t.Helper()
	p, err := New(testContext(), loader, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func waitIdle(t *testing.T, p *Paginator[string, string]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, p.WaitIdle(ctx))
}

// recorder collects every emission of an observable.
type recorder[V any] struct {
	values chan V
}

func record[V any](t *testing.T, o *Observable[V]) *recorder[V] {
	t.Helper()
	r := &recorder[V]{values: make(chan V, 256)}
	unsubscribe := o.Subscribe(func(v V) { r.values <- v })
	t.Cleanup(unsubscribe)
	return r
}

func (r *recorder[V]) drain() []V {
	var out []V
	for {
		select {
		case v := <-r.values:
			out = append(out, v)
		default:
			return out
		}
	}
}
