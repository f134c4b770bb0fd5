// Package tasks runs best-effort background work ("fire and forget") as
// detached goroutines that still report how they ended.
//
// Failures are logged and published as Results; they never reach the code
// that started the task.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Result struct {
	ID       string
	Name     string
	Err      error
	Started  time.Time
	Finished time.Time
}

func (r Result) OK() bool { return r.Err == nil }

type Func func(ctx context.Context) error

type Runner struct {
	log     *zap.Logger
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	subs   map[int]chan Result
	nextID int
}

// NewRunner returns a Runner whose tasks are cancelled after timeout.
func NewRunner(log *zap.Logger, timeout time.Duration) *Runner {
	return &Runner{log: log, timeout: timeout, subs: map[int]chan Result{}}
}

// Go starts fn in the background and returns its task id immediately.
func (r *Runner) Go(name string, fn Func) string {
	id := uuid.NewString()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res := Result{ID: id, Name: name, Started: time.Now()}

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		res.Err = r.run(ctx, fn)
		res.Finished = time.Now()

		if res.Err != nil {
			r.log.Warn("background task failed",
				zap.String("task", name), zap.String("task_id", id), zap.Error(res.Err))
		} else {
			r.log.Debug("background task finished",
				zap.String("task", name), zap.String("task_id", id),
				zap.Duration("took", res.Finished.Sub(res.Started)))
		}
		r.publish(res)
	}()
	return id
}

func (r *Runner) run(ctx context.Context, fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p}
		}
	}()
	return fn(ctx)
}

// Subscribe returns a channel receiving every Result published after the
// call, and a function that stops the subscription. Slow subscribers miss
// results rather than block tasks.
func (r *Runner) Subscribe(buffer int) (<-chan Result, func()) {
	ch := make(chan Result, buffer)
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

func (r *Runner) publish(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- res:
		default:
			r.log.Warn("dropping task result for slow subscriber", zap.String("task_id", res.ID))
		}
	}
}

// Wait blocks until every started task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "task panicked"
}
