package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/metrics"
)

const defaultMetricsUpdateInterval = 10 * time.Second

type memRecord struct {
	revision     int64
	submissionID string
	storedAt     time.Time
	name         string
	blob         []byte
	deleted      bool
}

// MemoryStore keeps encoded snapshots in memory. Encoding on Put isolates
// stored state from the caller's slices. Deleted meets leave a tombstone so
// a meet stored again continues its revision sequence.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memRecord
	now     func() time.Time

	metricsUpdateInterval time.Duration
	stop                  context.CancelFunc
	done                  chan struct{}
}

// NewMemoryStore creates an empty store. A background goroutine refreshes
// store gauges until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		records:               make(map[string]memRecord),
		now:                   time.Now,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		done:                  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	ctx, s.stop = context.WithCancel(ctx)
	go s.startMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) Put(ctx context.Context, meetID, submissionID string, snap model.Snapshot) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("put", msSince(start)) }()

	if strings.TrimSpace(meetID) == "" {
		return 0, ErrEmptyMeetID
	}
	blob, err := encodeSnapshot(snap)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[meetID]
	rec.revision++
	rec.submissionID = submissionID
	rec.storedAt = s.now().UTC()
	rec.name = snap.Meet.Name
	rec.blob = blob
	rec.deleted = false
	s.records[meetID] = rec
	return rec.revision, nil
}

func (s *MemoryStore) Get(ctx context.Context, meetID string) (Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("get", msSince(start)) }()

	s.mu.RLock()
	rec, ok := s.records[meetID]
	s.mu.RUnlock()
	if !ok || rec.deleted {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	snap, err := decodeSnapshot(rec.blob)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		MeetID:       meetID,
		Revision:     rec.revision,
		SubmissionID: rec.submissionID,
		StoredAt:     rec.storedAt,
		Snapshot:     snap,
	}, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.records))
	for id, rec := range s.records {
		if rec.deleted {
			continue
		}
		out = append(out, Summary{MeetID: id, Name: rec.name, Revision: rec.revision, StoredAt: rec.storedAt})
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.MeetID, b.MeetID) })
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, meetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[meetID]
	if !ok || rec.deleted {
		return ErrNotFound
	}
	s.records[meetID] = memRecord{revision: rec.revision, deleted: true}
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.records {
		if !rec.deleted {
			n++
		}
	}
	return n
}

// Close stops the background updater.
func (s *MemoryStore) Close() error {
	s.stop()
	<-s.done
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	metrics.UpdateMeetsTotal(s.Count(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateMeetsTotal(s.Count(ctx))
		}
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
