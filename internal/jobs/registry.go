package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/metrics"
	"github.com/arenadeck/deckscout/internal/pool"
)

// Task is one unit of asynchronous recommendation work. It must honor ctx:
// cancelling it is how the registry enforces supersession.
type Task func(ctx context.Context) ([]string, error)

// Handle is the caller's view of a submitted job. It resolves exactly once.
type Handle struct {
	ID        uuid.UUID
	Principal string

	done   chan struct{}
	cards  []string
	err    error
	status domain.JobStatus
}

// Done is closed when the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job finishes or ctx fires. A cancelled job resolves
// with domain.ErrJobCancelled.
func (h *Handle) Wait(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return h.cards, h.err
	}
}

// Status reports the job's current lifecycle state.
func (h *Handle) Status() domain.JobStatus {
	select {
	case <-h.done:
		return h.status
	default:
		return domain.StatusRunning
	}
}

type job struct {
	handle *Handle
	cancel context.CancelFunc
}

// Registry tracks at most one live job per principal. Submitting while a job
// is live cancels the prior job and guarantees it has fully resolved before
// the new task starts executing, so two scorer subprocesses never run
// concurrently for the same principal.
type Registry struct {
	base   context.Context
	pool   *pool.Pool
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// NewRegistry creates a registry whose jobs are children of base and run on
// the given worker pool.
func NewRegistry(base context.Context, p *pool.Pool, logger *zap.Logger) *Registry {
	return &Registry{
		base:   base,
		pool:   p,
		logger: logger,
		jobs:   make(map[string]*job),
	}
}

// Submit registers a new job for principal, superseding any live one. The
// cancel-then-replace sequence is atomic under the registry lock; the new
// task begins only after the superseded job has resolved.
func (r *Registry) Submit(principal string, task Task) *Handle {
	id, _ := uuid.NewV7()
	ctx, cancel := context.WithCancel(r.base)
	h := &Handle{ID: id, Principal: principal, done: make(chan struct{})}
	j := &job{handle: h, cancel: cancel}

	r.mu.Lock()
	prev := r.jobs[principal]
	if prev != nil {
		prev.cancel()
	}
	r.jobs[principal] = j
	r.mu.Unlock()

	if prev != nil {
		r.logger.Info("Superseding running job",
			zap.String("principal", principal),
			zap.String("old_job_id", prev.handle.ID.String()),
			zap.String("new_job_id", id.String()),
		)
	}

	metrics.JobsActive.Inc()
	r.pool.Go(ctx, "recommendation", func() {
		if prev != nil {
			<-prev.handle.done
		}
		r.run(principal, j, ctx, task)
	})

	return h
}

// Cancel fires the cancellation token of principal's live job, if any.
func (r *Registry) Cancel(principal string) {
	r.mu.Lock()
	j := r.jobs[principal]
	r.mu.Unlock()

	if j == nil {
		return
	}
	r.logger.Info("Job cancel requested",
		zap.String("principal", principal),
		zap.String("job_id", j.handle.ID.String()),
	)
	j.cancel()
}

// Lookup returns the live job handle for principal.
func (r *Registry) Lookup(principal string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[principal]
	if !ok {
		return nil, false
	}
	return j.handle, true
}

// Live reports whether a job is currently registered for principal.
func (r *Registry) Live(principal string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[principal] != nil
}

// LiveCount reports the number of registered jobs across all principals.
func (r *Registry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *Registry) run(principal string, j *job, ctx context.Context, task Task) {
	defer metrics.JobsActive.Dec()
	defer j.cancel()

	var cards []string
	var err error
	if ctx.Err() == nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("job panicked: %v", rec)
				}
			}()
			cards, err = task(ctx)
		}()
	}

	h := j.handle
	switch {
	case ctx.Err() != nil || errors.Is(err, domain.ErrJobCancelled):
		h.status = domain.StatusCancelled
		h.err = domain.ErrJobCancelled
		// Cancellation is an expected outcome, not a failure; no error log.
		r.logger.Debug("Job cancelled",
			zap.String("principal", principal),
			zap.String("job_id", h.ID.String()),
		)
	case err != nil:
		h.status = domain.StatusFailed
		h.err = err
		r.logger.Error("Job failed",
			zap.String("principal", principal),
			zap.String("job_id", h.ID.String()),
			zap.Error(err),
		)
	default:
		h.status = domain.StatusSucceeded
		h.cards = cards
	}

	metrics.RecommendationsTotal.WithLabelValues(strings.ToLower(string(h.status))).Inc()

	// Deregister before resolving the handle, so a caller that observed the
	// terminal state never finds the job still registered.
	r.remove(principal, j)
	close(h.done)
}

func (r *Registry) remove(principal string, j *job) {
	r.mu.Lock()
	if r.jobs[principal] == j {
		delete(r.jobs, principal)
	}
	r.mu.Unlock()
}
