package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Pool bounds how many tasks run concurrently. Tasks beyond the bound queue
// on their own goroutine, so submitters never block.
type Pool struct {
	slots  chan struct{}
	logger *zap.Logger
	wg     sync.WaitGroup
}

// New creates a pool with the given number of slots.
func New(size int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		slots:  make(chan struct{}, size),
		logger: logger,
	}
}

// Go schedules fn. It waits for a free slot unless ctx fires first; a
// cancelled task still runs so it can observe its cancellation and resolve,
// it just no longer counts against the bound. Panics are recovered and
// logged so one task cannot take the process down.
func (p *Pool) Go(ctx context.Context, name string, fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Task panic recovered",
					zap.String("task", name),
					zap.Any("panic", r),
				)
			}
		}()

		select {
		case p.slots <- struct{}{}:
			defer func() { <-p.slots }()
		case <-ctx.Done():
			p.logger.Debug("Task cancelled while queued", zap.String("task", name))
		}

		fn()
	}()
}

// Wait blocks until every scheduled task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
