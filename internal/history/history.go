// Package history keeps a local record of finished runs in SQLite, one
// row per run, for the stats command.
package history

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	// SQLite driver registration.
	_ "modernc.org/sqlite"
)

// Record is one finished run.
type Record struct {
	RunID          string
	Mode           string
	PromptHash     string
	Status         string
	StepsCompleted int
	TotalSteps     int
	Duration       time.Duration
	StartedAt      time.Time
}

// Store persists run records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and initializes
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			prompt_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			steps_completed INTEGER NOT NULL,
			total_steps INTEGER NOT NULL,
			duration_seconds REAL NOT NULL,
			started_at TEXT NOT NULL
		);`,
	)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// HashPrompt returns a short fingerprint of a prompt. The prompt text
// itself is never stored.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}

// Add appends a finished run.
func (s *Store) Add(rec Record) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, mode, prompt_hash, status, steps_completed, total_steps, duration_seconds, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Mode,
		rec.PromptHash,
		rec.Status,
		rec.StepsCompleted,
		rec.TotalSteps,
		rec.Duration.Seconds(),
		rec.StartedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT run_id, mode, prompt_hash, status, steps_completed, total_steps, duration_seconds, started_at
		FROM runs
		ORDER BY id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var seconds float64
		var startedAt string
		if err := rows.Scan(&rec.RunID, &rec.Mode, &rec.PromptHash, &rec.Status,
			&rec.StepsCompleted, &rec.TotalSteps, &seconds, &startedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(seconds * float64(time.Second))
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			rec.StartedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats aggregates the run history.
type Stats struct {
	TotalRuns     int
	Completed     int
	Failed        int
	ByMode        map[string]int
	TotalDuration time.Duration
}

// Summarize computes aggregate statistics over all recorded runs.
func (s *Store) Summarize() (*Stats, error) {
	rows, err := s.db.Query(`SELECT mode, status, duration_seconds FROM runs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := &Stats{ByMode: make(map[string]int)}
	for rows.Next() {
		var mode, status string
		var seconds float64
		if err := rows.Scan(&mode, &status, &seconds); err != nil {
			return nil, err
		}
		st.TotalRuns++
		st.ByMode[mode]++
		st.TotalDuration += time.Duration(seconds * float64(time.Second))
		switch status {
		case "completed":
			st.Completed++
		case "failed":
			st.Failed++
		}
	}
	return st, rows.Err()
}
