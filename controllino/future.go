package controllino

import (
	"context"
	"sync"
	"time"
)

// Future is a single assignment result cell. It is resolved exactly once,
// with either a value or an error, normally by the receive goroutine. Any
// number of goroutines can wait on or poll a Future.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an unresolved Future
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// SetResult resolves the future with v. It returns false, and changes
// nothing, if the future was already resolved.
func (f *Future[T]) SetResult(v T) bool {
	set := false
	f.once.Do(func() {
		f.value = v
		close(f.done)
		set = true
	})
	return set
}

// SetError resolves the future with err. It returns false, and changes
// nothing, if the future was already resolved.
func (f *Future[T]) SetError(err error) bool {
	set := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		set = true
	})
	return set
}

// Wait blocks until the future is resolved or timeout elapses and reports
// whether it is resolved. A zero timeout polls, a negative timeout waits
// forever.
func (f *Future[T]) Wait(timeout time.Duration) bool {
	select {
	case <-f.done:
		return true
	default:
	}

	if timeout == 0 {
		return false
	}

	if timeout < 0 {
		<-f.done
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-f.done:
		return true
	case <-t.C:
		return false
	}
}

// WaitContext blocks until the future is resolved or ctx is done
func (f *Future[T]) WaitContext(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done reports whether the future is resolved without blocking
func (f *Future[T]) Done() bool {
	return f.Wait(0)
}

// Resolved returns a channel that is closed once the future is resolved
func (f *Future[T]) Resolved() <-chan struct{} {
	return f.done
}

// Result returns the value or the error the future was resolved with.
// ErrNotDone is returned if it is not resolved yet.
func (f *Future[T]) Result() (T, error) {
	if !f.Done() {
		var zero T
		return zero, ErrNotDone
	}

	return f.value, f.err
}
