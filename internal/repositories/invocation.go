package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spindle/internal/shared"
)

const invocationSchema = `
CREATE TABLE IF NOT EXISTS invocations (
	id TEXT PRIMARY KEY,
	agent TEXT NOT NULL,
	tool TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	success INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at);
`

// Invocation is one recorded tool execution.
type Invocation struct {
	ID         string
	Agent      string
	Tool       string
	StatusCode int
	Success    bool
	DurationMS int64
	CreatedAt  time.Time
}

// InvocationRepository persists tool invocations in SQLite.
type InvocationRepository struct {
	db *sql.DB
}

// NewInvocationRepository creates a repository and ensures its schema exists.
func NewInvocationRepository(db *sql.DB) (*InvocationRepository, error) {
	if _, err := db.Exec(invocationSchema); err != nil {
		return nil, fmt.Errorf("failed to create invocations schema: %w", err)
	}
	return &InvocationRepository{db: db}, nil
}

// Record inserts one invocation row. Implements server.Recorder.
func (r *InvocationRepository) Record(agent, tool string, statusCode int, success bool, duration time.Duration) error {
	_, err := r.db.Exec(
		`INSERT INTO invocations (id, agent, tool, status_code, success, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		shared.GenerateID(), agent, tool, statusCode, success, duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// Recent returns the most recent invocations, newest first.
func (r *InvocationRepository) Recent(limit int) ([]Invocation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, agent, tool, status_code, success, duration_ms, created_at
		 FROM invocations ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var invocations []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.Agent, &inv.Tool, &inv.StatusCode, &inv.Success, &inv.DurationMS, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		invocations = append(invocations, inv)
	}

	return invocations, rows.Err()
}
