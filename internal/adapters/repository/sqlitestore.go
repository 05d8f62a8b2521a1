package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/metrics"
)

const (
	createMeetsTableSQL = `
  CREATE TABLE IF NOT EXISTS meet_snapshots (
  meet_id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  revision INTEGER NOT NULL,
  submission_id TEXT NOT NULL DEFAULT '',
  snapshot TEXT NOT NULL,
  stored_at DATETIME NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
  )`
	addDeletedColumnSQL = `ALTER TABLE meet_snapshots ADD COLUMN deleted INTEGER NOT NULL DEFAULT 0`

	upsertMeetSQL = `
  INSERT INTO meet_snapshots (meet_id, name, revision, submission_id, snapshot, stored_at)
  VALUES (?, ?, 1, ?, ?, ?)
  ON CONFLICT(meet_id) DO UPDATE SET
    name = excluded.name,
    revision = meet_snapshots.revision + 1,
    submission_id = excluded.submission_id,
    snapshot = excluded.snapshot,
    stored_at = excluded.stored_at,
    deleted = 0
  RETURNING revision`
	getMeetSQL   = `SELECT revision, submission_id, snapshot, stored_at FROM meet_snapshots WHERE meet_id = ? AND deleted = 0`
	listMeetsSQL = `SELECT meet_id, name, revision, stored_at FROM meet_snapshots WHERE deleted = 0 ORDER BY meet_id`
	// Deleted rows keep their revision so a re-stored meet never reuses one.
	deleteMeetSQL = `UPDATE meet_snapshots SET deleted = 1, snapshot = '' WHERE meet_id = ? AND deleted = 0`
	countMeetsSQL = `SELECT COUNT(*) FROM meet_snapshots WHERE deleted = 0`
)

// SQLiteStore persists snapshots as JSON documents in a sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: empty path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:"
	// databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createMeetsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := db.ExecContext(ctx, addDeletedColumnSQL); err != nil && !strings.Contains(err.Error(), "duplicate column") {
		db.Close()
		return nil, fmt.Errorf("failed to migrate table: %w", err)
	}

	s := &SQLiteStore{db: db}
	metrics.UpdateMeetsTotal(s.Count(ctx))
	return s, nil
}

func (s *SQLiteStore) Put(ctx context.Context, meetID, submissionID string, snap model.Snapshot) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("put", msSince(start)) }()

	if strings.TrimSpace(meetID) == "" {
		return 0, ErrEmptyMeetID
	}
	blob, err := encodeSnapshot(snap)
	if err != nil {
		return 0, err
	}

	var revision int64
	err = s.db.QueryRowContext(ctx, upsertMeetSQL,
		meetID, snap.Meet.Name, submissionID, string(blob), time.Now().UTC()).Scan(&revision)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "put_failed")
		return 0, fmt.Errorf("store meet %s: %w", meetID, err)
	}
	metrics.UpdateMeetsTotal(s.Count(ctx))
	return revision, nil
}

func (s *SQLiteStore) Get(ctx context.Context, meetID string) (Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("get", msSince(start)) }()

	var (
		e    = Entry{MeetID: meetID}
		blob string
	)
	err := s.db.QueryRowContext(ctx, getMeetSQL, meetID).Scan(&e.Revision, &e.SubmissionID, &blob, &e.StoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load meet %s: %w", meetID, err)
	}
	if e.Snapshot, err = decodeSnapshot([]byte(blob)); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, listMeetsSQL)
	if err != nil {
		return nil, fmt.Errorf("list meets: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var m Summary
		if err := rows.Scan(&m.MeetID, &m.Name, &m.Revision, &m.StoredAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, meetID string) error {
	res, err := s.db.ExecContext(ctx, deleteMeetSQL, meetID)
	if err != nil {
		return fmt.Errorf("delete meet %s: %w", meetID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	metrics.UpdateMeetsTotal(s.Count(ctx))
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, countMeetsSQL).Scan(&n); err != nil {
		return 0
	}
	return n
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
