// Package history keeps a SQLite ledger of runs and their per-file results.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raoulx24/feed-archiver/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    state       TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS results (
    run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq      INTEGER NOT NULL,
    stage    TEXT NOT NULL,
    name     TEXT NOT NULL,
    status   TEXT NOT NULL,
    artifact TEXT NOT NULL DEFAULT '',
    detail   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// timeLayout is fixed width so that stored timestamps sort as text in
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one invocation as stored in the ledger.
type Run struct {
	ID       string
	Started  time.Time
	Finished time.Time
	State    string
	Error    string
	Results  []report.Result
}

// Summary is a run with its result counts.
type Summary struct {
	ID       string
	Started  time.Time
	Finished time.Time
	State    string
	Error    string
	Archived int
	Purged   int
	Failed   int
}

// Store persists runs to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the ledger at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path cannot be empty")
	}

	dsn, err := dsnFor(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record writes a run and its results in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, state, error) VALUES (?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.Started), formatTime(run.Finished), run.State, run.Error)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, seq, stage, name, status, artifact, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, res := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(res.Stage), res.Name, string(res.Status), res.Artifact, res.Detail()); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.started_at, r.finished_at, r.state, r.error,
       COALESCE(SUM(x.status = 'archived'), 0),
       COALESCE(SUM(x.status = 'purged'), 0),
       COALESCE(SUM(x.status = 'failed'), 0)
FROM runs r
LEFT JOIN results x ON x.run_id = r.id
GROUP BY r.id
ORDER BY r.started_at DESC, r.id
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum               Summary
			started, finished string
		)
		if err := rows.Scan(&sum.ID, &started, &finished, &sum.State, &sum.Error, &sum.Archived, &sum.Purged, &sum.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sum.Started, err = parseTime(started); err != nil {
			return nil, err
		}
		if sum.Finished, err = parseTime(finished); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Results returns the stored results of one run in order.
func (s *Store) Results(ctx context.Context, runID string) ([]report.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, name, status, artifact, detail FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []report.Result
	for rows.Next() {
		var (
			res           report.Result
			stage, status string
			detail        string
		)
		if err := rows.Scan(&stage, &res.Name, &status, &res.Artifact, &detail); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Stage = report.Stage(stage)
		res.Status = report.Status(status)
		if detail != "" {
			res.Err = errors.New(detail)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// dsnFor builds a file: URI for path. The path is escaped so that '?', '#'
// and '%' in file names reach SQLite intact.
func dsnFor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// C:/x on windows
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	}
	return u.String(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
