// Package futures provides the small asynchronous-execution primitive used by
// pulplib to compose multi-step remote operations.
//
// A Future is resolved exactly once by the function passed to Go. Callers
// block on Result; combinators (Map, FlatMap, All) build dependent chains
// without re-reading sibling futures. There is no cancellation primitive: once
// a step has been submitted it runs to completion, and Result merely stops
// waiting when the caller's context is done.
package futures

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Future represents the eventual result of an asynchronous operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in a new goroutine and returns a Future resolved with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// Resolved returns an already-resolved Future carrying val.
func Resolved[T any](val T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: val}
	close(f.done)
	return f
}

// Failed returns an already-resolved Future carrying err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Result blocks until the future resolves or ctx is done. A context error
// abandons the wait but does not stop the underlying work.
func (f *Future[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Map returns a Future resolved with fn applied to f's value. If f fails, the
// error propagates and fn is not called.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		<-f.done
		if f.err != nil {
			var zero U
			return zero, f.err
		}
		return fn(f.val)
	})
}

// FlatMap chains f into the Future produced by fn, which receives f's value
// as an explicit argument once available.
func FlatMap[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	return Go(func() (U, error) {
		<-f.done
		if f.err != nil {
			var zero U
			return zero, f.err
		}
		next := fn(f.val)
		<-next.done
		return next.val, next.err
	})
}

// OnDone invokes fn with f's outcome from a new goroutine once f resolves.
// The caller's handle is unaffected by anything fn does; intended for
// best-effort cleanup steps.
func OnDone[T any](f *Future[T], fn func(T, error)) {
	go func() {
		<-f.done
		fn(f.val, f.err)
	}()
}

// All resolves with the values of all given futures, in order, or with the
// first error encountered. Waiting is concurrent across the inputs.
func All[T any](ctx context.Context, fs ...*Future[T]) *Future[[]T] {
	return Go(func() ([]T, error) {
		out := make([]T, len(fs))
		g, gctx := errgroup.WithContext(ctx)
		for i, f := range fs {
			i, f := i, f
			g.Go(func() error {
				val, err := f.Result(gctx)
				if err != nil {
					return err
				}
				out[i] = val
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
}
