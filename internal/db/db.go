// Package db provides the SQLite run ledger for taskdawn.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daviddao/taskdawn/internal/types"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for ledger operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) a ledger at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec(Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- Run operations ---

// RecordRun stores a finished run and its per-account outcomes.
func (d *DB) RecordRun(s *types.RunSummary) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, skipped, skip_reason, success_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, formatTime(s.StartedAt), formatTime(s.FinishedAt),
		boolInt(s.Skipped), s.SkipReason, s.SuccessCount, s.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range s.Results {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO run_accounts (run_id, account, stage, error, task_count, skipped_lists)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.RunID, r.Account, r.Stage, r.Error, r.TaskCount, r.SkippedLists,
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", r.Account, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first, without account rows.
func (d *DB) RecentRuns(limit int) ([]*types.RunSummary, error) {
	rows, err := d.conn.Query(`
		SELECT id, started_at, finished_at, skipped, COALESCE(skip_reason, ''), success_count, error_count
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*types.RunSummary
	for rows.Next() {
		var (
			s                 types.RunSummary
			started, finished string
			skipped           int
		)
		if err := rows.Scan(&s.RunID, &started, &finished, &skipped, &s.SkipReason, &s.SuccessCount, &s.ErrorCount); err != nil {
			return nil, err
		}
		s.StartedAt = parseTime(started)
		s.FinishedAt = parseTime(finished)
		s.Skipped = skipped == 1
		runs = append(runs, &s)
	}
	return runs, rows.Err()
}

// RunAccounts returns the per-account outcomes of a run.
func (d *DB) RunAccounts(runID string) ([]types.AccountResult, error) {
	rows, err := d.conn.Query(`
		SELECT account, COALESCE(stage, ''), COALESCE(error, ''), task_count, skipped_lists
		FROM run_accounts
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.AccountResult
	for rows.Next() {
		var r types.AccountResult
		if err := rows.Scan(&r.Account, &r.Stage, &r.Error, &r.TaskCount, &r.SkippedLists); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// LastDelivery returns when a digest was last delivered to account, or the
// zero time if never.
func (d *DB) LastDelivery(account string) (time.Time, error) {
	var t sql.NullString
	err := d.conn.QueryRow(`
		SELECT MAX(r.finished_at)
		FROM run_accounts a JOIN runs r ON r.id = a.run_id
		WHERE a.account = ? AND COALESCE(a.error, '') = ''`, account).Scan(&t)
	if err != nil {
		return time.Time{}, fmt.Errorf("last delivery for %s: %w", account, err)
	}
	if t.Valid {
		return parseTime(t.String), nil
	}
	return time.Time{}, nil
}

// RunCount returns the total number of recorded runs.
func (d *DB) RunCount() (int, error) {
	var n int
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}
