// Package worker runs recompute jobs: each job composes and ranks one view
// of a stored meet and publishes the result.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Job is what workers read off the queue.
type Job = model.RecomputeJob

// Computer computes one view of a stored meet and returns the revision it
// was computed from.
type Computer interface {
	Compute(ctx context.Context, meetID string, mode model.ViewMode) (ranking.Result, int64, error)
}

// Publisher receives computed results.
type Publisher interface {
	Put(meetID string, mode model.ViewMode, revision int64, res ranking.Result) bool
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker processes jobs from a queue.
type InMemoryWorker struct {
	queue     Queue
	computer  Computer
	publisher Publisher
	name      string
	timeout   time.Duration
	active    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(queue Queue, computer Computer, publisher Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		computer:  computer,
		publisher: publisher,
		name:      "worker",
		active:    new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until ctx is done, Shutdown is called, or the queue
// is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "recompute failed", logger.String("job_id", job.JobID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for the job in flight.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	res, revision, err := w.computer.Compute(ctx, job.MeetID, job.Mode)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "compute_error")
		return fmt.Errorf("compute meet %s (%s): %w", job.MeetID, job.Mode, err)
	}

	stored := w.publisher.Put(job.MeetID, job.Mode, revision, res)
	w.logger.Debug(ctx, "recomputed",
		logger.String("meet_id", job.MeetID),
		logger.String("mode", string(job.Mode)),
		logger.Any("revision", revision),
		logger.Bool("stored", stored),
	)
	return nil
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one uses the number
// of CPUs.
func NewPool(workerCount int, queue Queue, computer Computer, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
	}
	active := new(atomic.Int64)
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(queue, computer, publisher, wopts...)
		p.workers[i].active = active
	}
	p.logger = p.workers[0].logger

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool: %w", shutdownCtx.Err())
	}
	return nil
}
