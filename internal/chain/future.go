package chain

import (
	"context"
	"sync"
)

type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Future is a value that settles once, either with a value or an error.
// Callbacks registered with Then on a settled future run immediately on the
// caller's goroutine; otherwise they run on the goroutine that settles it.
type Future[T any] struct {
	mu      sync.Mutex
	state   State
	val     T
	err     error
	done    chan struct{}
	waiters []func(T, error)
}

// NewFuture returns a pending future and the function that settles it.
// Only the first call to settle has any effect.
func NewFuture[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.settle
}

// Resolve returns a future already fulfilled with v.
func Resolve[T any](v T) *Future[T] {
	f, settle := NewFuture[T]()
	settle(v, nil)
	return f
}

// Reject returns a future already rejected with err.
func Reject[T any](err error) *Future[T] {
	f, settle := NewFuture[T]()
	var zero T
	settle(zero, err)
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.state != Pending {
		f.mu.Unlock()
		return
	}
	f.val, f.err = v, err
	if err != nil {
		f.state = Rejected
	} else {
		f.state = Fulfilled
	}
	waiters := f.waiters
	f.waiters = nil
	close(f.done)
	f.mu.Unlock()

	for _, w := range waiters {
		w(v, err)
	}
}

// Then registers fn to observe the outcome.
func (f *Future[T]) Then(fn func(T, error)) {
	f.mu.Lock()
	if f.state == Pending {
		f.waiters = append(f.waiters, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Peek reports the current state without blocking.
func (f *Future[T]) Peek() (State, T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.val, f.err
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx is done. Giving up on ctx
// does not cancel the work behind the future.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		_, v, err := f.Peek()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
