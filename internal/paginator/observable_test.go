package paginator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable_SubscribeReplaysLatest(t *testing.T) {
	o := newObservable(1, nil)
	o.publish(2)

	var got []int
	unsubscribe := o.Subscribe(func(v int) { got = append(got, v) })
	o.publish(3)
	unsubscribe()
	o.publish(4)

	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 4, o.Value())
}

func TestObservable_EqualSuppressesRepeats(t *testing.T) {
	o := newObservable(false, equalComparable[bool])

	var got []bool
	defer o.Subscribe(func(v bool) { got = append(got, v) })()

	assert.True(t, o.publish(true))
	assert.False(t, o.publish(true))
	assert.True(t, o.publish(false))

	assert.Equal(t, []bool{false, true, false}, got)
}

func TestObservable_UnsubscribeInsideCallback(t *testing.T) {
	o := newObservable(0, nil)

	var calls int
	var unsubscribe func()
	unsubscribe = o.Subscribe(func(v int) {
		calls++
		if v == 1 {
			unsubscribe()
		}
	})
	o.publish(1)
	o.publish(2)

	assert.Equal(t, 2, calls)
}

func TestObservable_Watch(t *testing.T) {
	o := newObservable("a", nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := o.Watch(ctx)
	assert.Equal(t, "a", <-ch)

	// Only the newest undelivered value is kept.
	o.publish("b")
	o.publish("c")
	assert.Equal(t, "c", <-ch)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Publishing after the watcher is gone must not panic.
	o.publish("d")
}
