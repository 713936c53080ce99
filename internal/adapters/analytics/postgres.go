// Package analytics records served searches.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"cinematch/internal/domain"
)

const recordTimeout = 2 * time.Second

const createTable = `CREATE TABLE IF NOT EXISTS search_events (
	id           BIGSERIAL PRIMARY KEY,
	request_id   TEXT NOT NULL,
	query        TEXT NOT NULL,
	response     TEXT NOT NULL,
	path         TEXT NOT NULL,
	steps        TEXT[] NOT NULL,
	result_count INTEGER NOT NULL,
	streamed     BOOLEAN NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertEvent = `INSERT INTO search_events
	(request_id, query, response, path, steps, result_count, streamed)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// PostgresRecorder writes search events to Postgres.
type PostgresRecorder struct {
	db *sql.DB
}

// Open connects to Postgres with the lib/pq driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRecorder creates a recorder on an open database.
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// EnsureSchema creates the search_events table when missing.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create search_events: %w", err)
	}
	return nil
}

// Record inserts one event.
func (r *PostgresRecorder) Record(ctx context.Context, e domain.SearchEvent) error {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	steps := e.Steps
	if steps == nil {
		steps = []string{}
	}
	_, err := r.db.ExecContext(ctx, insertEvent,
		e.RequestID, e.Query, string(e.Type), string(e.Path), pq.Array(steps), e.ResultCount, e.Streamed)
	if err != nil {
		return fmt.Errorf("insert search event: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}
