// Package repository stores meet snapshots and caches computed results.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// Entry is one stored meet snapshot. Revision starts at 1 and grows by one
// on every Put for the same meet.
type Entry struct {
	MeetID       string
	Revision     int64
	SubmissionID string
	StoredAt     time.Time
	Snapshot     model.Snapshot
}

// Summary describes a stored meet without its snapshot.
type Summary struct {
	MeetID   string    `json:"meet_id"`
	Name     string    `json:"name"`
	Revision int64     `json:"revision"`
	StoredAt time.Time `json:"stored_at"`
}

// Store provides read/write access to meet snapshots.
type Store interface {
	// Put replaces the snapshot of meetID and returns its new revision.
	Put(ctx context.Context, meetID, submissionID string, snap model.Snapshot) (int64, error)

	// Get returns the latest snapshot of meetID, or ErrNotFound.
	Get(ctx context.Context, meetID string) (Entry, error)

	// List returns every stored meet ordered by meet id.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a meet. Deleting an unknown meet returns ErrNotFound.
	Delete(ctx context.Context, meetID string) error

	Count(ctx context.Context) int

	Close() error
}

// Kinds accepted by Open.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// Open builds the store named by kind. path is only used by sqlite.
func Open(ctx context.Context, kind, path string, opts ...Option) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(ctx, opts...), nil
	case KindSQLite:
		return NewSQLiteStore(ctx, path)
	}
	return nil, fmt.Errorf("store %q: %w", kind, ErrUnknownStore)
}

func encodeSnapshot(snap model.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %v: %w", err, ErrCorruptSnapshot)
	}
	return snap, nil
}
