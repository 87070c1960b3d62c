// Package history persists submitted jobs in a local SQLite database. It is
// an audit log for the history command; the summarization workflow never
// reads it back.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
)

// Store manages the job history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id           TEXT PRIMARY KEY,
    kind         TEXT NOT NULL,
    input_name   TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    progress     INTEGER NOT NULL DEFAULT 0,
    message      TEXT NOT NULL DEFAULT '',
    last_error   TEXT NOT NULL DEFAULT '',
    submitted_at TEXT NOT NULL,
    completed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_jobs_submitted_at ON jobs (submitted_at DESC);
`

// Open initializes or connects to the history database at path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.ErrHistoryFailed("create history directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.ErrHistoryFailed("open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, apperrors.ErrHistoryFailed(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, apperrors.ErrHistoryFailed("initialize schema", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordSubmission inserts a freshly issued job. Re-submitting the same job
// id replaces the earlier record.
func (s *Store) RecordSubmission(ctx context.Context, job *entities.Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, input_name, status, progress, message, last_error, submitted_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			input_name = excluded.input_name,
			status = excluded.status,
			progress = excluded.progress,
			message = excluded.message,
			last_error = excluded.last_error,
			submitted_at = excluded.submitted_at,
			completed_at = excluded.completed_at`,
		job.ID, string(job.Kind), job.InputName, string(job.Status),
		job.Progress, job.Message, job.LastError,
		job.SubmittedAt.UTC().Format(time.RFC3339Nano), nullableTime(job.CompletedAt))
	if err != nil {
		return apperrors.ErrHistoryFailed("record submission", err)
	}
	return nil
}

// UpdateStatus applies a status transition observed while polling. Terminal
// statuses also stamp completed_at.
func (s *Store) UpdateStatus(ctx context.Context, jobID string, status entities.JobStatusValue, progress int, message string) error {
	var completedAt interface{}
	if status.IsTerminal() {
		completedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	var res sql.Result
	var err error
	if status == entities.JobStatusFailed {
		res, err = s.db.ExecContext(ctx, `
			UPDATE jobs SET status = ?, progress = ?, message = ?, last_error = ?, completed_at = COALESCE(?, completed_at)
			WHERE id = ?`,
			string(status), progress, message, message, completedAt, jobID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE jobs SET status = ?, progress = ?, message = ?, completed_at = COALESCE(?, completed_at)
			WHERE id = ?`,
			string(status), progress, message, completedAt, jobID)
	}
	if err != nil {
		return apperrors.ErrHistoryFailed("update status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrJobNotFound(jobID)
	}
	return nil
}

// Get returns a single job record by id.
func (s *Store) Get(ctx context.Context, jobID string) (*entities.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, input_name, status, progress, message, last_error, submitted_at, completed_at
		FROM jobs WHERE id = ?`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrJobNotFound(jobID)
	}
	if err != nil {
		return nil, apperrors.ErrHistoryFailed("load job", err)
	}
	return job, nil
}

// Recent returns up to limit jobs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*entities.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, input_name, status, progress, message, last_error, submitted_at, completed_at
		FROM jobs ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.ErrHistoryFailed("list jobs", err)
	}
	defer rows.Close()

	var jobs []*entities.Job
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, apperrors.ErrHistoryFailed("scan job", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrHistoryFailed("iterate jobs", err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*entities.Job, error) {
	var (
		job         entities.Job
		kind        string
		status      string
		submittedAt string
		completedAt sql.NullString
	)
	if err := row.Scan(&job.ID, &kind, &job.InputName, &status, &job.Progress,
		&job.Message, &job.LastError, &submittedAt, &completedAt); err != nil {
		return nil, err
	}
	job.Kind = entities.JobKind(kind)
	job.Status = entities.JobStatusValue(status)

	if t, err := time.Parse(time.RFC3339Nano, submittedAt); err == nil {
		job.SubmittedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			job.CompletedAt = &t
		}
	}
	return &job, nil
}

func nullableTime(value *time.Time) interface{} {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
