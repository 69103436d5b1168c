// Package worker provides a bounded goroutine pool for notification fan-out.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"petmemorial/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware unit of work.
type Task func(ctx context.Context) error

// Pool wraps ants.Pool.
type Pool struct {
	pool *ants.Pool
	name string
	log  *zap.Logger
}

func NewPool(name string, size int, l *zap.Logger) (*Pool, error) {
	l = logger.OrNop(l)
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(func(v interface{}) {
			l.Error("worker panic recovered", zap.String("pool", name), zap.Any("panic", v), zap.Stack("stack"))
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", name, err)
	}
	return &Pool{pool: p, name: name, log: l}, nil
}

// Settle runs every task and waits for all of them, returning one error slot per task.
// A failing or panicking task never prevents the others from running.
// A nil pool runs the tasks sequentially on the caller's goroutine.
func (p *Pool) Settle(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	if p == nil || p.pool == nil {
		for i, task := range tasks {
			errs[i] = runSafe(ctx, task)
		}
		return errs
	}

	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			errs[i] = runSafe(ctx, task)
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrPoolClosed
			}
			errs[i] = err
		}
	}
	wg.Wait()
	return errs
}

// Running returns the number of busy workers.
func (p *Pool) Running() int {
	if p == nil || p.pool == nil {
		return 0
	}
	return p.pool.Running()
}

// Release shuts the pool down.
func (p *Pool) Release() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Release()
	p.log.Info("worker pool released", zap.String("pool", p.name))
}

func runSafe(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return task(ctx)
}

// CountSucceeded counts nil entries in a Settle result.
func CountSucceeded(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}
