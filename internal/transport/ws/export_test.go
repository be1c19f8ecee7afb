package ws

import "context"

// SetAfterFunc replaces the hook that arms cancellation for each exchange.
func (l *Loader[T]) SetAfterFunc(fn func(context.Context, func()) func() bool) {
	l.afterFunc = fn
}
