// Package history records every extraction attempt in a local SQLite
// database so past runs can be inspected with `metagen history`. The dataset
// file itself stays the source of truth for metadata; this is diagnostics
// only.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Attempt is one extraction attempt, successful or not.
type Attempt struct {
	JobID    int
	Model    string
	Status   string // "ok", "provider_error", "malformed_response"
	Error    string // empty on success
	Duration time.Duration
	At       time.Time
}

const (
	StatusOK        = "ok"
	StatusProvider  = "provider_error"
	StatusMalformed = "malformed_response"
)

// Recorder records extraction attempts. Satisfied by SQLiteHistory and
// NopHistory.
type Recorder interface {
	Record(a Attempt) error
}

// SQLiteHistory stores attempts in a SQLite database.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens (or creates) a SQLite database at dbPath and ensures
// the extraction_runs table exists.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS extraction_runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id      INTEGER NOT NULL,
		model       TEXT NOT NULL,
		status      TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating extraction_runs table: %w", err)
	}

	return &SQLiteHistory{db: db}, nil
}

// Record inserts one attempt.
func (h *SQLiteHistory) Record(a Attempt) error {
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := h.db.Exec(
		"INSERT INTO extraction_runs (job_id, model, status, error, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.JobID, a.Model, a.Status, a.Error, a.Duration.Milliseconds(), at,
	)
	if err != nil {
		return fmt.Errorf("recording attempt for job %d: %w", a.JobID, err)
	}
	return nil
}

// Recent returns the most recent attempts, newest first.
func (h *SQLiteHistory) Recent(limit int) ([]Attempt, error) {
	rows, err := h.db.Query(
		"SELECT job_id, model, status, error, duration_ms, created_at FROM extraction_runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var durationMS int64
		if err := rows.Scan(&a.JobID, &a.Model, &a.Status, &a.Error, &durationMS, &a.At); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		a.Duration = time.Duration(durationMS) * time.Millisecond
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CountByStatus returns attempt counts keyed by status.
func (h *SQLiteHistory) CountByStatus() (map[string]int, error) {
	rows, err := h.db.Query("SELECT status, COUNT(*) FROM extraction_runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Cleanup deletes attempts older than the given duration.
func (h *SQLiteHistory) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := h.db.Exec("DELETE FROM extraction_runs WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up attempts older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
