package imagekmeans

import (
	"context"
	"fmt"
)

// Future is the pending result of an asynchronous engine operation.
type Future struct {
	done   chan struct{}
	result RunResult
	err    error
}

// goFuture runs fn on its own goroutine. A panic in fn fails the future
// with ErrInternalInvariant.
func goFuture(fn func() (RunResult, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.result = RunResult{}
				f.err = fmt.Errorf("%w: panic: %v", ErrInternalInvariant, r)
			}
		}()
		f.result, f.err = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the operation finishes or ctx is done. Cancelling ctx
// stops the wait only; the computation runs to completion in the background.
func (f *Future) Await(ctx context.Context) (RunResult, error) {
	select {
	case <-f.done:
		return f.result, f.err
	default:
	}

	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}
}
