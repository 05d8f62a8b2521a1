// Package service provides the meet scoring service behind the HTTP API.
//
// Snapshots are stored per meet with a growing revision. Every stored
// snapshot schedules one recompute job per view mode on the worker pool;
// reads are served from the result cache and fall back to a synchronous
// computation while the cache is cold.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/adapters/mq/queue"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/adapters/mq/worker"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/adapters/repository"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/dedupe"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/scoring"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/types"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/view"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/metrics"
)

// Service implements the API dependencies of the meet scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	cache   *repository.ResultCache
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	tables  *scoring.Memo

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	storeKind      string
	storePath      string
	defaultMode    model.ViewMode
	computeTimeout time.Duration

	// State
	started     bool
	storeClosed bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      1024,
		dedupeSize:     50_000,
		storeKind:      repository.KindMemory,
		defaultMode:    model.ViewHybrid,
		computeTimeout: 5 * time.Second,
		tables:         &scoring.Memo{},
		cache:          repository.NewResultCache(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting meet scoring service...")

	if s.store == nil || s.storeClosed {
		store, err := repository.Open(ctx, s.storeKind, s.storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.storeClosed = false
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.cache,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithComputeTimeout(s.computeTimeout),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "meet scoring service started",
		logger.String("store", s.storeKind),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("defaultMode", string(s.defaultMode)),
	)
	return nil
}

// Stop drains the worker pool and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping meet scoring service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	// The closed store stays referenced so reads racing shutdown fail
	// with an error instead of dereferencing nil.
	s.storeClosed = true

	s.started = false
	s.logger.Info(ctx, "meet scoring service stopped")
	return errors.Join(errs...)
}

// running returns the store of a started service.
func (s *Service) running() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// PutSnapshot stores the snapshot of a meet and schedules its recompute.
// A submission id seen before is acknowledged as a duplicate without storing
// anything; an empty id gets a generated one. When the queue cannot take the
// jobs the submission id is released so the client can retry, and
// ErrBackpressure is returned.
func (s *Service) PutSnapshot(ctx context.Context, submissionID string, snap model.Snapshot) (types.PutResult, error) {
	store, err := s.running()
	if err != nil {
		return types.PutResult{}, err
	}
	if err := Validate(snap); err != nil {
		return types.PutResult{}, err
	}

	if snap.Meet.ViewMode != "" {
		snap.Meet.ViewMode, _ = model.ParseViewMode(string(snap.Meet.ViewMode))
	}

	meetID := snap.Meet.ID
	if submissionID == "" {
		submissionID = uuid.NewString()
	}
	res := types.PutResult{MeetID: meetID, SubmissionID: submissionID}

	if s.deduper.SeenAndRecord(ctx, submissionID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission",
			logger.String("meet_id", meetID),
			logger.String("submission_id", submissionID),
		)
		res.Duplicate = true
		return res, nil
	}

	revision, err := store.Put(ctx, meetID, submissionID, snap)
	if err != nil {
		s.deduper.Unrecord(ctx, submissionID)
		metrics.RecordErrorByComponent("service", "store_put")
		return types.PutResult{}, fmt.Errorf("store meet %s: %w", meetID, err)
	}
	res.Revision = revision
	s.cache.Invalidate(meetID)
	metrics.RecordSnapshotStored()
	metrics.UpdateMeetsTotal(store.Count(ctx))

	for _, mode := range model.ViewModes {
		job := queue.Job{JobID: uuid.NewString(), MeetID: meetID, Mode: mode, Revision: revision}
		if !s.queue.Enqueue(ctx, job) {
			s.deduper.Unrecord(ctx, submissionID)
			s.logger.Warn(ctx, "recompute queue full",
				logger.String("meet_id", meetID),
				logger.Any("revision", revision),
			)
			return res, fmt.Errorf("meet %s revision %d: %w", meetID, revision, ErrBackpressure)
		}
	}

	s.logger.Info(ctx, "snapshot stored",
		logger.String("meet_id", meetID),
		logger.String("submission_id", submissionID),
		logger.Any("revision", revision),
		logger.Int("events", len(snap.Events)),
		logger.Int("teams", len(snap.Teams)),
	)
	return res, nil
}

// Compute ranks the latest snapshot of a meet. It is the worker pool's
// Computer and the synchronous fallback of reads.
func (s *Service) Compute(ctx context.Context, meetID string, mode model.ViewMode) (ranking.Result, int64, error) {
	entry, err := s.store.Get(ctx, meetID)
	if err != nil {
		return ranking.Result{}, 0, fmt.Errorf("load meet %s: %w", meetID, err)
	}
	res, err := s.compute(ctx, entry, mode)
	return res, entry.Revision, err
}

func (s *Service) compute(ctx context.Context, entry repository.Entry, mode model.ViewMode) (ranking.Result, error) {
	if err := ctx.Err(); err != nil {
		return ranking.Result{}, err
	}

	start := time.Now()
	res, err := Evaluate(entry.Snapshot, mode, s.tables)
	metrics.RecordComputeLatency(string(mode), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordComputation(string(mode), "error")
		s.logger.Error(ctx, "computation failed",
			logger.String("meet_id", entry.MeetID),
			logger.String("mode", string(mode)),
			logger.Error(err),
		)
		return ranking.Result{}, err
	}
	metrics.RecordComputation(string(mode), "ok")

	for _, w := range res.Warnings {
		metrics.RecordWarning(string(w.Kind))
		s.logger.Warn(ctx, w.Message,
			logger.String("meet_id", entry.MeetID),
			logger.String("mode", string(mode)),
			logger.String("kind", string(w.Kind)),
			logger.String("record_id", w.RecordID),
		)
	}
	return res, nil
}

// Standings returns the ranked result of a meet for one view mode. An empty
// mode uses the meet's own mode, then the service default.
func (s *Service) Standings(ctx context.Context, meetID string, mode model.ViewMode) (ranking.Result, error) {
	store, err := s.running()
	if err != nil {
		return ranking.Result{}, err
	}

	entry, err := store.Get(ctx, meetID)
	if err != nil {
		return ranking.Result{}, fmt.Errorf("load meet %s: %w", meetID, err)
	}
	mode = s.resolveMode(entry.Snapshot.Meet, mode)

	if res, ok := s.cache.Get(meetID, mode, entry.Revision); ok {
		return res, nil
	}

	res, err := s.compute(ctx, entry, mode)
	if err != nil {
		return ranking.Result{}, err
	}
	s.cache.Put(meetID, mode, entry.Revision, res)
	return res, nil
}

// EventResults returns one event's ranked rows.
func (s *Service) EventResults(ctx context.Context, meetID, eventID string, mode model.ViewMode) (ranking.EventResult, error) {
	res, err := s.Standings(ctx, meetID, mode)
	if err != nil {
		return ranking.EventResult{}, err
	}
	ev, ok := res.Event(eventID)
	if !ok {
		return ranking.EventResult{}, fmt.Errorf("event %s of meet %s: %w", eventID, meetID, ErrEventNotFound)
	}
	return ev, nil
}

// Availability reports whether a meet has real results or seed data.
func (s *Service) Availability(ctx context.Context, meetID string) (types.Availability, error) {
	store, err := s.running()
	if err != nil {
		return types.Availability{}, err
	}

	entry, err := store.Get(ctx, meetID)
	if err != nil {
		return types.Availability{}, fmt.Errorf("load meet %s: %w", meetID, err)
	}
	hasReal, err := view.HasRealResults(entry.Snapshot, nil)
	if err != nil {
		return types.Availability{}, err
	}
	hasSim, err := view.HasSimulatedData(entry.Snapshot)
	if err != nil {
		return types.Availability{}, err
	}
	av := types.Availability{
		MeetID:           meetID,
		Revision:         entry.Revision,
		HasRealResults:   hasReal,
		HasSimulatedData: hasSim,
	}
	s.logger.Debug(ctx, "availability", logger.String("modes", av.String()))
	return av, nil
}

// ListMeets returns the stored meets.
func (s *Service) ListMeets(ctx context.Context) ([]repository.Summary, error) {
	store, err := s.running()
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// DeleteMeet removes a meet and its cached results.
func (s *Service) DeleteMeet(ctx context.Context, meetID string) error {
	store, err := s.running()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, meetID); err != nil {
		return fmt.Errorf("delete meet %s: %w", meetID, err)
	}
	s.cache.Invalidate(meetID)
	metrics.UpdateMeetsTotal(store.Count(ctx))
	s.logger.Info(ctx, "meet deleted", logger.String("meet_id", meetID))
	return nil
}

func (s *Service) resolveMode(meet model.Meet, mode model.ViewMode) model.ViewMode {
	if mode != "" {
		return mode
	}
	if m, err := model.ParseViewMode(string(meet.ViewMode)); err == nil {
		return m
	}
	return s.defaultMode
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"store":       s.storeKind,
		"defaultMode": s.defaultMode,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len(ctx)
		meets := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["meets"] = meets
		stats["cachedResults"] = s.cache.Len()
		stats["submissionsSeen"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateMeetsTotal(meets)
	}

	return stats
}
