// Package state provides SQLite-based run history for swarm. Finished
// runs are persisted with their task and blackboard snapshots; the
// orchestration engine itself never touches storage.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// Store wraps an SQLite database holding run history.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns the path to the swarm history database.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "swarm", "history.db")
}

// Open opens (and migrates) an SQLite database at the given path,
// creating parent directories as needed. WAL mode is enabled for
// concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies all pending schema migrations.
func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	goal TEXT NOT NULL,
	protocol TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0,
	final_output TEXT,
	total_turns INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	tasks_json TEXT NOT NULL,
	blackboard_json TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// RunRecord is one persisted run.
type RunRecord struct {
	// ID is the run's unique identifier.
	ID string
	// Goal is the run's goal text.
	Goal string
	// Protocol is the protocol the plan executed under.
	Protocol models.Protocol
	// Success mirrors the result's success flag.
	Success bool
	// FinalOutput is the run's final output text.
	FinalOutput string
	// TotalTurns counts agent invocations for the run.
	TotalTurns int
	// StartedAt is when the run began (zero for ExecutePlan results).
	StartedAt time.Time
	// Duration is the run's wall-clock duration.
	Duration time.Duration
	// Tasks is the task snapshot.
	Tasks []*models.Task
	// Blackboard is the blackboard snapshot.
	Blackboard []*models.BlackboardEntry
	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// SaveResult persists a finished run and returns the record's ID.
func (s *Store) SaveResult(protocol models.Protocol, result *models.SwarmResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasksJSON, err := json.Marshal(result.Tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	boardJSON, err := json.Marshal(result.Blackboard)
	if err != nil {
		return "", fmt.Errorf("marshal blackboard: %w", err)
	}

	id := uuid.NewString()
	_, err = s.conn.Exec(`
		INSERT INTO runs (id, goal, protocol, success, final_output, total_turns,
			started_at, duration_ms, tasks_json, blackboard_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.Goal, string(protocol), boolToInt(result.Success),
		result.FinalOutput, result.TotalTurns,
		result.Timing.StartedAt, result.Timing.Duration.Milliseconds(),
		string(tasksJSON), string(boardJSON), time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first, without their
// snapshots.
func (s *Store) ListRuns(limit int) ([]*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(`
		SELECT id, goal, protocol, success, final_output, total_turns,
			started_at, duration_ms, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		var r RunRecord
		var protocol string
		var success int
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Goal, &protocol, &success, &r.FinalOutput,
			&r.TotalTurns, &r.StartedAt, &durationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Protocol = models.Protocol(protocol)
		r.Success = success != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, &r)
	}
	return records, rows.Err()
}

// GetRun returns one run with its full task and blackboard snapshots.
// The id may be a unique prefix of the full run ID, as printed by the
// run listing.
func (s *Store) GetRun(id string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(`
		SELECT id, goal, protocol, success, final_output, total_turns,
			started_at, duration_ms, tasks_json, blackboard_json, created_at
		FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		var r RunRecord
		var protocol, tasksJSON, boardJSON string
		var success int
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Goal, &protocol, &success, &r.FinalOutput,
			&r.TotalTurns, &r.StartedAt, &durationMS, &tasksJSON, &boardJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Protocol = models.Protocol(protocol)
		r.Success = success != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(tasksJSON), &r.Tasks); err != nil {
			return nil, fmt.Errorf("unmarshal tasks: %w", err)
		}
		if err := json.Unmarshal([]byte(boardJSON), &r.Blackboard); err != nil {
			return nil, fmt.Errorf("unmarshal blackboard: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	case 1:
		return records[0], nil
	default:
		return nil, fmt.Errorf("run ID %s is ambiguous, use a longer prefix", id)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
