package paginator

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/pagerkit/internal/logging"
)

// Config holds construction-time options of a Paginator.
type Config[Q comparable, T any] struct {
	// Merge folds each page into the accumulated list. Defaults to Concat.
	Merge MergeFunc[T]

	// ClearOnStartOver publishes an empty list as soon as a new query is
	// accepted. When false the previous list stays visible until the new first
	// page resolves.
	ClearOnStartOver bool

	// Equal decides whether a query restarts the session. Defaults to ==.
	Equal func(a, b Q) bool
}

type eventKind int

const (
	evStartOver eventKind = iota
	evRefresh
	evNextPage
	evSettle
	evWait
)

type event[Q comparable, T any] struct {
	kind   eventKind
	query  Q
	result fetchResult[T]
	waiter chan struct{}
}

// Paginator is the session controller. It is safe for concurrent use; all
// state transitions happen on one internal goroutine.
type Paginator[Q comparable, T any] struct {
	id      string
	cfg     Config[Q, T]
	fetcher fetcher[Q, T]
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// queue state, guarded by mu.
	mu     sync.Mutex
	events []event[Q, T]
	closed bool
	signal chan struct{}

	// handling is set while the loop handles an event, which is when
	// subscriber callbacks run.
	handling atomic.Bool

	// loop-owned state.
	current *session[Q, T]
	lastID  uint64
	stats   Stats
	waiters []chan struct{}

	accumulated *Observable[[]T]
	tracker     tracker
	snapshot    atomic.Pointer[Snapshot[Q, T]]
}

// New starts a paginator that loads pages with loader. The paginator stops
// when ctx is done or Close is called. The logger attached to ctx is used for
// diagnostics.
func New[Q comparable, T any](ctx context.Context, loader Loader[Q, T], cfg Config[Q, T]) (*Paginator[Q, T], error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Merge == nil {
		cfg.Merge = Concat[T]()
	}
	if cfg.Equal == nil {
		cfg.Equal = equalComparable[Q]
	}

	id := ulid.Make().String()
	loopCtx, cancel := context.WithCancel(ctx)
	p := &Paginator[Q, T]{
		id:          id,
		cfg:         cfg,
		fetcher:     fetcher[Q, T]{loader: loader},
		log:         logging.FromContext(ctx).With().Str("component", "paginator").Str("paginator_id", id).Logger(),
		ctx:         loopCtx,
		cancel:      cancel,
		done:        make(chan struct{}),
		signal:      make(chan struct{}, 1),
		accumulated: newCloningObservable([]T{}, slices.Clone[[]T]),
		tracker:     newTracker(),
	}
	p.storeSnapshot()

	go p.run()
	return p, nil
}

// ID returns the paginator's unique identifier, used in logs.
func (p *Paginator[Q, T]) ID() string {
	return p.id
}

// StartOverWith begins a new session for query unless query equals the
// current one. It never blocks on I/O.
func (p *Paginator[Q, T]) StartOverWith(query Q) {
	p.enqueue(event[Q, T]{kind: evStartOver, query: query})
}

// Refresh restarts the current query as a new session, bypassing the equal
// query check. It is a no-op before the first StartOverWith.
func (p *Paginator[Q, T]) Refresh() {
	p.enqueue(event[Q, T]{kind: evRefresh})
}

// NextPage requests the page after the last loaded one. It is a no-op when
// there is no session, the session is exhausted, or a fetch is in flight.
func (p *Paginator[Q, T]) NextPage() {
	p.enqueue(event[Q, T]{kind: evNextPage})
}

// Accumulated publishes the visible list of the current session. Every
// subscriber and every Value call gets its own copy of the list.
func (p *Paginator[Q, T]) Accumulated() *Observable[[]T] {
	return p.accumulated
}

// IsFetching publishes whether the current session has a fetch in flight.
func (p *Paginator[Q, T]) IsFetching() *Observable[bool] {
	return p.tracker.fetching
}

// PageIndex publishes the index of the page last requested in the current
// session.
func (p *Paginator[Q, T]) PageIndex() *Observable[int] {
	return p.tracker.index
}

// Snapshot returns a consistent view of the paginator after the last
// processed event.
func (p *Paginator[Q, T]) Snapshot() Snapshot[Q, T] {
	snap := *p.snapshot.Load()
	snap.Items = slices.Clone(snap.Items)
	return snap
}

// WaitIdle blocks until every event queued before the call has been handled
// and the current session has no fetch in flight.
//
// WaitIdle must not be called from a subscriber callback: the paginator
// cannot go idle until the callback returns, so such a call only ends when ctx
// is done.
func (p *Paginator[Q, T]) WaitIdle(ctx context.Context) error {
	ch := make(chan struct{})
	if !p.enqueue(event[Q, T]{kind: evWait, waiter: ch}) {
		return ErrClosed
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrClosed
	}
}

// Close stops the paginator and cancels any in-flight fetch. Later calls to
// StartOverWith and NextPage are no-ops.
//
// Close waits for the paginator to stop, except while an event is being
// handled. Then it may be running inside a subscriber callback, so it returns
// after cancelling and the paginator stops once the callback returns.
func (p *Paginator[Q, T]) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	if p.handling.Load() {
		return nil
	}
	<-p.done
	return nil
}

func (p *Paginator[Q, T]) enqueue(ev event[Q, T]) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.events = append(p.events, ev)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
	return true
}

func (p *Paginator[Q, T]) dequeue() (event[Q, T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return event[Q, T]{}, false
	}
	ev := p.events[0]
	p.events[0] = event[Q, T]{}
	p.events = p.events[1:]
	return ev, true
}

func (p *Paginator[Q, T]) run() {
	defer close(p.done)
	defer p.shutdown()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.signal:
		}

		for {
			if p.ctx.Err() != nil {
				return
			}
			ev, ok := p.dequeue()
			if !ok {
				break
			}
			p.handling.Store(true)
			p.handle(ev)
			p.handling.Store(false)
			p.storeSnapshot()
			p.releaseWaiters()
		}
	}
}

func (p *Paginator[Q, T]) shutdown() {
	p.mu.Lock()
	p.closed = true
	p.events = nil
	p.mu.Unlock()

	if p.current != nil {
		p.current.cancel()
	}
	p.log.Debug().Uint64("sessions", p.stats.Sessions).Msg("paginator stopped")
}

func (p *Paginator[Q, T]) handle(ev event[Q, T]) {
	switch ev.kind {
	case evStartOver:
		p.startOver(ev.query, false)
	case evRefresh:
		if p.current != nil {
			p.startOver(p.current.query, true)
		}
	case evNextPage:
		p.nextPage()
	case evSettle:
		p.settle(ev.result)
	case evWait:
		p.waiters = append(p.waiters, ev.waiter)
	}
}

func (p *Paginator[Q, T]) startOver(query Q, force bool) {
	if prev := p.current; prev != nil {
		if !force && p.cfg.Equal(prev.query, query) {
			p.log.Debug().Uint64("session_id", prev.id).Msg("start over ignored: query unchanged")
			return
		}
		prev.cancel()
	}

	p.lastID++
	p.stats.Sessions++
	ctx, cancel := context.WithCancel(p.ctx)
	s := &session[Q, T]{
		id:          p.lastID,
		query:       query,
		accumulated: []T{},
		ctx:         ctx,
		cancel:      cancel,
	}
	p.current = s
	p.log.Debug().Uint64("session_id", s.id).Bool("refresh", force).Msg("session started")

	if p.cfg.ClearOnStartOver {
		p.accumulated.publish([]T{})
	}
	p.dispatch(s, fetchFirst)
}

func (p *Paginator[Q, T]) nextPage() {
	s := p.current
	if s == nil || s.fetching || s.cursor.isExhausted() {
		return
	}
	if _, started := s.cursor.get(); !started {
		// The first page degraded; asking for more retries it.
		p.dispatch(s, fetchFirst)
		return
	}
	p.dispatch(s, fetchNext)
}

func (p *Paginator[Q, T]) dispatch(s *session[Q, T], kind fetchKind) {
	cursor, _ := s.cursor.get()
	req := fetchRequest[Q]{
		sessionID: s.id,
		kind:      kind,
		query:     s.query,
		cursor:    cursor,
		pageIndex: s.loaded + 1,
	}

	s.fetching = true
	p.stats.Dispatched++
	p.tracker.dispatched(req.pageIndex)
	p.log.Debug().
		Uint64("session_id", s.id).
		Stringer("kind", kind).
		Int("page_index", req.pageIndex).
		Msg("fetch dispatched")

	f := p.fetcher
	ctx := s.ctx
	go func() {
		res := f.fetch(ctx, req)
		p.enqueue(event[Q, T]{kind: evSettle, result: res})
	}()
}

func (p *Paginator[Q, T]) settle(res fetchResult[T]) {
	s := p.current
	if s == nil || res.sessionID != s.id {
		p.stats.Stale++
		p.log.Trace().Uint64("session_id", res.sessionID).Msg("stale page discarded")
		return
	}

	s.fetching = false
	p.tracker.settled()

	if res.degraded {
		p.stats.Degraded++
		p.log.Warn().
			Err(res.err).
			Uint64("session_id", s.id).
			Stringer("kind", res.kind).
			Int("page_index", res.pageIndex).
			Msg("page fetch failed, using empty page")
	} else {
		s.loaded++
		s.cursor.set(res.page.NextCursor)
	}

	switch {
	case res.kind == fetchFirst:
		s.accumulated = p.cfg.Merge([]T{}, res.page.Items)
		p.accumulated.publish(slices.Clone(s.accumulated))
	case !res.degraded:
		s.accumulated = p.cfg.Merge(s.accumulated, res.page.Items)
		p.accumulated.publish(slices.Clone(s.accumulated))
	}

	p.log.Debug().
		Uint64("session_id", s.id).
		Int("items", len(s.accumulated)).
		Bool("exhausted", s.cursor.isExhausted()).
		Msg("page settled")
}

// releaseWaiters runs after the snapshot is stored, so a returning WaitIdle
// always observes the settled state.
func (p *Paginator[Q, T]) releaseWaiters() {
	if len(p.waiters) == 0 || (p.current != nil && p.current.fetching) {
		return
	}
	for _, w := range p.waiters {
		close(w)
	}
	p.waiters = nil
}

func (p *Paginator[Q, T]) storeSnapshot() {
	snap := &Snapshot[Q, T]{
		Phase:      p.current.phase(),
		Items:      p.accumulated.Value(),
		FetchState: p.tracker.state(),
		Stats:      p.stats,
	}
	if s := p.current; s != nil {
		snap.SessionID = s.id
		snap.Query = s.query
		snap.Cursor, _ = s.cursor.get()
		snap.Exhausted = s.cursor.isExhausted()
	}
	p.snapshot.Store(snap)
}
