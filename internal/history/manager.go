package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/migrations"
)

// ErrRunNotFound is returned when no run matches an ID or prefix
var ErrRunNotFound = errors.New("run not found")

// Manager handles run history persistence
type Manager struct {
	db *sql.DB
}

// NewManager opens (creating if needed) the history database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Single connection so :memory: databases are shared and writes serialize
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

// SaveRun stores a run with its summaries and phases. An empty ID is
// replaced with a new one.
func (m *Manager) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs
		(id, started_at, completed_at, status, target, resort_name, ski_day, max_threads, skier_count,
		 lift_count, requests_per_second, total_requests, successful_requests, failed_requests,
		 wall_time_ms, throughput, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.CompletedAt.UTC(), run.Status, run.Target, run.ResortName,
		run.SkiDay, run.MaxThreads, run.SkierCount, run.LiftCount, run.RequestsPerSecond,
		run.Total, run.Successful, run.Failed, run.WallTimeMs, run.Throughput, run.Error)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, s := range run.Summaries {
		_, err := tx.Exec(`
			INSERT INTO run_summaries (run_id, request_type, sample_count, mean_ms, median_ms, p99_ms, max_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, s.RequestType, s.Count, s.MeanMs, s.MedianMs, s.P99Ms, s.MaxMs)
		if err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}
	}

	for _, p := range run.Phases {
		_, err := tx.Exec(`
			INSERT INTO run_phases (run_id, phase, workers, gate_timed_out, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, p.Number, p.Workers, p.GateTimedOut, p.StartedAt.UTC(), p.CompletedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert phase: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, completed_at, status, COALESCE(error_message, ''), target, resort_name,
	ski_day, max_threads, skier_count, lift_count, requests_per_second, total_requests,
	successful_requests, failed_requests, wall_time_ms, throughput`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	err := row.Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Status, &run.Error, &run.Target,
		&run.ResortName, &run.SkiDay, &run.MaxThreads, &run.SkierCount, &run.LiftCount,
		&run.RequestsPerSecond, &run.Total, &run.Successful, &run.Failed, &run.WallTimeMs, &run.Throughput)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without summaries or phases.
// A limit of 0 or less returns every run.
func (m *Manager) ListRuns(limit int) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run by full ID or unique ID prefix, including summaries and phases
func (m *Manager) GetRun(idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}

	rows, err := m.db.Query("SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? LIMIT 2",
		idOrPrefix, idOrPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", idOrPrefix)
	}

	run := matches[0]
	if run.Summaries, err = m.summaries(run.ID); err != nil {
		return nil, err
	}
	if run.Phases, err = m.phases(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (m *Manager) summaries(runID string) ([]Summary, error) {
	rows, err := m.db.Query(`
		SELECT request_type, sample_count, mean_ms, median_ms, p99_ms, max_ms
		FROM run_summaries WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.RequestType, &s.Count, &s.MeanMs, &s.MedianMs, &s.P99Ms, &s.MaxMs); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (m *Manager) phases(runID string) ([]Phase, error) {
	rows, err := m.db.Query(`
		SELECT phase, workers, gate_timed_out, started_at, completed_at
		FROM run_phases WHERE run_id = ? ORDER BY phase
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phases: %w", err)
	}
	defer rows.Close()

	var out []Phase
	for rows.Next() {
		var p Phase
		if err := rows.Scan(&p.Number, &p.Workers, &p.GateTimedOut, &p.StartedAt, &p.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan phase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its children
func (m *Manager) DeleteRun(id string) error {
	result, err := m.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
