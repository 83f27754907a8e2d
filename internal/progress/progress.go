// Package progress persists per-course upload high-water marks in SQLite so
// an interrupted run can resume without re-creating days that already made
// it into the backend.
package progress

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; a mismatching database
// must be deleted (it only holds resumption hints, never content).
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version of this tool.
var ErrSchemaMismatch = errors.New("progress: schema version mismatch")

// CourseProgress is one course's upload state.
type CourseProgress struct {
	SourceID        string
	RunID           string
	LastUploadedDay int
	UploadedDays    int
	TotalDays       int
	UpdatedAt       time.Time
}

type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the progress database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("progress: create dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "progress.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("progress: open %s: %w", dbPath, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("progress: apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("progress: check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("progress: read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("progress: begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("progress: create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("progress: record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("progress: commit schema: %w", err)
	}
	return nil
}

// LastUploadedDay returns the highest day number recorded as uploaded for
// the course, or 0 when nothing has been uploaded yet.
func (s *Store) LastUploadedDay(ctx context.Context, sourceID string) (int, error) {
	var day int
	err := s.db.QueryRowContext(ctx,
		"SELECT last_uploaded_day FROM course_progress WHERE source_id = ?", sourceID,
	).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("progress: read %s: %w", sourceID, err)
	}
	return day, nil
}

// RecordUpload upserts the course row after a successful day upload. The
// high-water mark only moves forward.
func (s *Store) RecordUpload(ctx context.Context, sourceID, runID string, dayNumber, totalDays int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO course_progress (source_id, run_id, last_uploaded_day, uploaded_days, total_days, updated_at)
        VALUES (?, ?, ?, 1, ?, ?)
        ON CONFLICT(source_id) DO UPDATE SET
            run_id            = excluded.run_id,
            last_uploaded_day = MAX(last_uploaded_day, excluded.last_uploaded_day),
            uploaded_days     = uploaded_days + 1,
            total_days        = excluded.total_days,
            updated_at        = excluded.updated_at`,
		sourceID, runID, dayNumber, totalDays, now)
	if err != nil {
		return fmt.Errorf("progress: record upload %s day %d: %w", sourceID, dayNumber, err)
	}
	return nil
}

// Reset forgets a course's progress so the next upload starts from day 1.
func (s *Store) Reset(ctx context.Context, sourceID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM course_progress WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("progress: reset %s: %w", sourceID, err)
	}
	return nil
}

// Snapshot returns all recorded course rows, ordered by source id.
func (s *Store) Snapshot(ctx context.Context) ([]CourseProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT source_id, run_id, last_uploaded_day, uploaded_days, total_days, updated_at
        FROM course_progress ORDER BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("progress: snapshot: %w", err)
	}
	defer rows.Close()

	var out []CourseProgress
	for rows.Next() {
		var cp CourseProgress
		var updatedAt string
		if err := rows.Scan(&cp.SourceID, &cp.RunID, &cp.LastUploadedDay, &cp.UploadedDays, &cp.TotalDays, &updatedAt); err != nil {
			return nil, fmt.Errorf("progress: scan row: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
			cp.UpdatedAt = ts
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress: iterate rows: %w", err)
	}
	return out, nil
}
