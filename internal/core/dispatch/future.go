package dispatch

import (
	"context"
	"sync"

	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/diag"
)

// Future is one eventual outcome. It completes exactly once
type Future[T any] struct {
	exec *Executor

	mu        sync.Mutex
	done      chan struct{}
	completed bool
	val       T
	err       error
	callbacks []func()
}

func newFuture[T any](e *Executor) *Future[T] {
	return &Future[T]{exec: e, done: make(chan struct{})}
}

// Completed returns an already completed future
func Completed[T any](e *Executor, v T, err error) *Future[T] {
	f := newFuture[T](e)
	f.complete(v, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}
	f.completed = true
	f.val, f.err = v, err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (f *Future[T]) onComplete(cb func()) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	cb()
}

// Done is closed once the outcome is available
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the outcome is available or ctx is done
// giving up on the wait does not cancel the backend call
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then runs fn with f's outcome on an executor worker
//
// the diagnostic context on ctx is copied into that worker for the duration of fn
// and removed afterwards. When f is already complete and ctx belongs to a worker,
// fn runs inline on that worker with its context untouched
func Then[T, U any](ctx context.Context, f *Future[T], fn func(ctx context.Context, v T, err error) (U, error)) *Future[U] {
	next := newFuture[U](f.exec)

	if current(ctx) != nil {
		select {
		case <-f.done:
			v, err := guard(ctx, func(ctx context.Context) (U, error) { return fn(ctx, f.val, f.err) })
			next.complete(v, err)
			return next
		default:
		}
	}

	t := task{
		base: context.WithoutCancel(ctx),
		snap: diag.FromContext(ctx).Snapshot(),
		run: func(wctx context.Context) {
			v, err := guard(wctx, func(ctx context.Context) (U, error) { return fn(ctx, f.val, f.err) })
			next.complete(v, err)
		},
		fail: func(err error) {
			var zero U
			next.complete(zero, err)
		},
	}
	f.onComplete(func() { f.exec.submit(t) })
	return next
}

// Submit runs fn on an executor worker with ctx's diagnostic context applied
func Submit[T any](ctx context.Context, e *Executor, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T](e)
	e.submit(task{
		base: context.WithoutCancel(ctx),
		snap: diag.FromContext(ctx).Snapshot(),
		run: func(wctx context.Context) {
			v, err := guard(wctx, fn)
			f.complete(v, err)
		},
		fail: func(err error) {
			var zero T
			f.complete(zero, err)
		},
	})
	return f
}

// guard turns a panic in fn into a panic-coded error
func guard[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("callback panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// All completes once every future in fs has completed
// values keep fs's order; the first error by position wins
func All[T any](e *Executor, fs ...*Future[T]) *Future[[]T] {
	out := newFuture[[]T](e)
	if len(fs) == 0 {
		out.complete([]T{}, nil)
		return out
	}
	var mu sync.Mutex
	pending := len(fs)
	for _, f := range fs {
		f.onComplete(func() {
			mu.Lock()
			pending--
			last := pending == 0
			mu.Unlock()
			if !last {
				return
			}
			vals := make([]T, len(fs))
			for i, g := range fs {
				if g.err != nil {
					out.complete(nil, g.err)
					return
				}
				vals[i] = g.val
			}
			out.complete(vals, nil)
		})
	}
	return out
}

// Compose is Then for callbacks that start another asynchronous step
// the returned future completes with the outcome of the future fn returns
func Compose[T, U any](ctx context.Context, f *Future[T], fn func(ctx context.Context, v T, err error) *Future[U]) *Future[U] {
	inner := Then(ctx, f, func(ctx context.Context, v T, err error) (*Future[U], error) {
		return fn(ctx, v, err), nil
	})
	out := newFuture[U](f.exec)
	inner.onComplete(func() {
		g, err := inner.val, inner.err
		if err == nil && g == nil {
			err = perr.IllegalArgf("compose callback returned no future")
		}
		if err != nil {
			var zero U
			out.complete(zero, err)
			return
		}
		g.onComplete(func() { out.complete(g.val, g.err) })
	})
	return out
}
