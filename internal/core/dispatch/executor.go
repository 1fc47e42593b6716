package dispatch

import (
	"context"
	"sync"

	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/diag"
	"hubconnect/internal/platform/logger"
)

// Executor is a fixed pool of workers that run completion callbacks
// every worker owns a diagnostic bag that is empty between tasks
type Executor struct {
	tasks   chan task
	workers []*worker
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	// spill counts tasks still being handed over after the queue was full
	spill sync.WaitGroup
}

type worker struct {
	id  int
	bag *diag.Bag
}

type task struct {
	base context.Context
	snap map[diag.Key]string
	run  func(ctx context.Context)
	fail func(err error)
}

type workerKey struct{}

// current returns the worker running ctx's task, if any
func current(ctx context.Context) *worker {
	w, _ := ctx.Value(workerKey{}).(*worker)
	return w
}

// WorkerID reports which worker ctx runs on
func WorkerID(ctx context.Context) (int, bool) {
	if w := current(ctx); w != nil {
		return w.id, true
	}
	return 0, false
}

// NewExecutor starts n workers; n < 1 means 1
func NewExecutor(n int) *Executor {
	if n < 1 {
		n = 1
	}
	e := &Executor{tasks: make(chan task, n*64)}
	for i := range n {
		w := &worker{id: i, bag: diag.NewBag()}
		e.workers = append(e.workers, w)
		e.wg.Add(1)
		go e.loop(w)
	}
	return e
}

func (e *Executor) loop(w *worker) {
	defer e.wg.Done()
	for t := range e.tasks {
		e.exec(w, t)
	}
}

func (e *Executor) exec(w *worker, t task) {
	applied := diag.Apply(w.bag, t.snap)
	defer w.bag.Remove(applied...)

	ctx := diag.WithBag(t.base, w.bag)
	ctx = context.WithValue(ctx, workerKey{}, w)
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().Interface("panic", r).Int("worker", w.id).Msg("executor task panicked")
		}
	}()
	t.run(ctx)
}

func (e *Executor) submit(t task) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		t.fail(perr.Unavailablef("executor closed"))
		return
	}
	select {
	case e.tasks <- t:
	default:
		// a worker may be the one submitting, so never block on a full queue
		e.spill.Add(1)
		go func() {
			defer e.spill.Done()
			e.tasks <- t
		}()
	}
}

// Size returns the number of workers
func (e *Executor) Size() int { return len(e.workers) }

// Close stops accepting work, drains queued and spilled tasks, then waits for the workers
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	e.spill.Wait()
	close(e.tasks)
	e.wg.Wait()
}
