// Package history persists launcher runs in a local SQLite database so past
// operations and their output stay inspectable after the window closes.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/operation"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.Base("run not found")

// Writes that hit a locked database are retried with doubling waits. The
// connection's busy_timeout already covers most contention.
const (
	writeAttempts = 4
	writeBackoff  = 25 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	operation   TEXT NOT NULL,
	input_path  TEXT NOT NULL,
	output_path TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	success     INTEGER,
	exit_code   INTEGER,
	canceled    INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	transcript  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at DESC);
`

// Entry is one stored run. Finished is false while the run is still active
// or if the shell exited before it completed.
type Entry struct {
	ID         string
	Request    operation.Request
	StartedAt  time.Time
	FinishedAt time.Time
	Finished   bool
	Success    bool
	ExitCode   int
	Canceled   bool
	Error      string
	Transcript string
}

func (e Entry) Status() string {
	switch {
	case !e.Finished:
		return "running"
	case e.Canceled:
		return "canceled"
	case e.Success:
		return "success"
	default:
		return "failed"
	}
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ launcher.Recorder = (*Store)(nil)

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Errorf("ensure history directory: %w", err)
	}
	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Errorf("init history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

// Begin records a run as started.
func (s *Store) Begin(ctx context.Context, run launcher.Run) error {
	return s.exec(ctx, `INSERT INTO runs (id, operation, input_path, output_path, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Request.Operation),
		run.Request.InputPath,
		run.Request.OutputPath,
		run.StartedAt.UnixMilli(),
	)
}

// Complete stores how run ended along with its captured output.
func (s *Store) Complete(ctx context.Context, run launcher.Run, outcome launcher.Outcome, transcript string) error {
	errText := ""
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}
	return s.exec(ctx, `UPDATE runs SET finished_at = ?, success = ?, exit_code = ?, canceled = ?, error = ?, transcript = ? WHERE id = ?`,
		run.StartedAt.Add(outcome.Duration).UnixMilli(),
		boolInt(outcome.Success),
		outcome.ExitCode,
		boolInt(outcome.Canceled),
		errText,
		transcript,
		run.ID,
	)
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, operation, input_path, output_path, started_at, finished_at, success, exit_code, canceled, error, transcript
		FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("iterate runs: %w", err)
	}
	return entries, nil
}

// Get returns the run with id, which may be a unique prefix. The prefix is
// compared literally.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, errors.WithStack(ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, operation, input_path, output_path, started_at, finished_at, success, exit_code, canceled, error, transcript
		FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY started_at DESC LIMIT 2`, id, id)
	if err != nil {
		return Entry{}, errors.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return Entry{}, err
		}
		found = append(found, entry)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, errors.Errorf("iterate run: %w", err)
	}
	switch len(found) {
	case 0:
		return Entry{}, errors.WithStack(ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return Entry{}, errors.Errorf("run id prefix %q is ambiguous", id)
	}
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		op         string
		startedAt  int64
		finishedAt sql.NullInt64
		success    sql.NullInt64
		exitCode   sql.NullInt64
		canceled   int64
	)
	if err := rows.Scan(&e.ID, &op, &e.Request.InputPath, &e.Request.OutputPath, &startedAt,
		&finishedAt, &success, &exitCode, &canceled, &e.Error, &e.Transcript); err != nil {
		return Entry{}, errors.Errorf("scan run: %w", err)
	}
	e.Request.Operation = operation.Operation(op)
	e.StartedAt = time.UnixMilli(startedAt)
	if finishedAt.Valid {
		e.Finished = true
		e.FinishedAt = time.UnixMilli(finishedAt.Int64)
	}
	e.Success = success.Valid && success.Int64 == 1
	if exitCode.Valid {
		e.ExitCode = int(exitCode.Int64)
	}
	e.Canceled = canceled == 1
	return e, nil
}

// exec runs a write statement, retrying while another connection holds the
// database lock.
func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	wait := writeBackoff
	for attempt := 1; ; attempt++ {
		_, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !isBusy(err) || attempt == writeAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func isBusy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	// extended result codes keep the primary code in the low byte
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
