package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite"
)

// SQLiteRunStore persists run records in SQLite.
type SQLiteRunStore struct {
	db *sql.DB
}

// NewSQLiteRunStore wraps an open database handle and ensures the schema.
func NewSQLiteRunStore(db *sql.DB) (*SQLiteRunStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureRunSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteRunStore{db: db}, nil
}

// Open opens (or creates) the database at path and returns a store on it.
func Open(path string) (*SQLiteRunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteRunStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Record implements RunStore.
func (s *SQLiteRunStore) Record(ctx context.Context, rec RunRecord) error {
	calls, err := json.Marshal(rec.ToolCalls)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_runs (
			run_id, role, task, success, report, tool_calls_json, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Role,
		rec.Task,
		rec.Success,
		rec.Report,
		string(calls),
		rec.StartedAt.UTC(),
		rec.FinishedAt.UTC(),
	)
	return err
}

// List implements RunStore. Records come back oldest first.
func (s *SQLiteRunStore) List(ctx context.Context, filter Filter) ([]RunRecord, error) {
	query := `
		SELECT run_id, role, task, success, report, tool_calls_json, started_at, finished_at
		FROM agent_runs
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.Role != "" {
		addFilter("role = ?", filter.Role)
	}
	if filter.Success != nil {
		addFilter("success = ?", *filter.Success)
	}
	query += where + " ORDER BY started_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			callsJSON string
			started   sql.NullTime
			finished  sql.NullTime
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Role,
			&rec.Task,
			&rec.Success,
			&rec.Report,
			&callsJSON,
			&started,
			&finished,
		); err != nil {
			return nil, err
		}
		if callsJSON != "" {
			_ = json.Unmarshal([]byte(callsJSON), &rec.ToolCalls)
		}
		if started.Valid {
			rec.StartedAt = started.Time
		}
		if finished.Valid {
			rec.FinishedAt = finished.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the underlying database handle.
func (s *SQLiteRunStore) Close() error { return s.db.Close() }

func ensureRunSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS agent_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			role TEXT NOT NULL,
			task TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			report TEXT,
			tool_calls_json TEXT,
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_agent_runs_role ON agent_runs(role);
		CREATE INDEX IF NOT EXISTS idx_agent_runs_success ON agent_runs(success);
	`)
	return err
}

var _ RunStore = (*SQLiteRunStore)(nil)
