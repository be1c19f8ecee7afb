package paginator

import (
	"context"
	"sync"
)

// Observable holds the latest value of a signal and fans every new value out
// to its subscribers, in publish order.
//
// Only the owning Paginator publishes. Subscriber callbacks run on the
// paginator's goroutine and must not block. They may call back into the
// paginator, including Close, but must not call WaitIdle or call Subscribe
// synchronously.
type Observable[V any] struct {
	mu     sync.RWMutex
	value  V
	subs   map[uint64]func(V)
	nextID uint64

	// emitMu orders replays on Subscribe against concurrent publishes.
	emitMu sync.Mutex

	// equal suppresses consecutive duplicate values when set.
	equal func(a, b V) bool

	// clone, when set, copies the value handed to each reader so that no
	// reader sees another's writes.
	clone func(V) V
}

func newObservable[V any](initial V, equal func(a, b V) bool) *Observable[V] {
	return &Observable[V]{
		value: initial,
		subs:  make(map[uint64]func(V)),
		equal: equal,
	}
}

// Value returns the latest published value.
func (o *Observable[V]) Value() V {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.copyOf(o.value)
}

// Subscribe calls fn with the latest value and then with every value published
// after it. The returned function removes the subscription; it is safe to call
// more than once and from inside fn.
func (o *Observable[V]) Subscribe(fn func(V)) func() {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	current := o.copyOf(o.value)
	o.mu.Unlock()

	fn(current)

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Watch returns a channel carrying the latest value and later updates. The
// channel keeps only the newest undelivered value, so slow readers skip
// intermediate states. It is closed when ctx is done.
func (o *Observable[V]) Watch(ctx context.Context) <-chan V {
	ch := make(chan V, 1)

	var mu sync.Mutex
	closed := false
	send := func(v V) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		ch <- v
	}

	unsubscribe := o.Subscribe(send)
	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// publish stores v and notifies subscribers. It reports whether v was emitted.
func (o *Observable[V]) publish(v V) bool {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if o.equal != nil && o.equal(o.value, v) {
		o.mu.Unlock()
		return false
	}
	o.value = v
	subs := make([]func(V), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(o.copyOf(v))
	}
	return true
}

func newCloningObservable[V any](initial V, clone func(V) V) *Observable[V] {
	o := newObservable(initial, nil)
	o.clone = clone
	return o
}

func (o *Observable[V]) copyOf(v V) V {
	if o.clone == nil {
		return v
	}
	return o.clone(v)
}

func equalComparable[V comparable](a, b V) bool {
	return a == b
}
