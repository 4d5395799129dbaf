package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the audit tables if they do not exist
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.WithComponent("database").Debug("Creating database schema")

	for _, stmt := range []string{createGenerationEventsTable, createGenerationEventsIndexes} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Only metadata is stored; transcripts and notes never reach the database.
const (
	createGenerationEventsTable = `
		CREATE TABLE IF NOT EXISTS generation_events (
			id UUID PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL DEFAULT '',
			mode VARCHAR(16) NOT NULL,
			transcript_length INTEGER NOT NULL,
			outcome VARCHAR(32) NOT NULL,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);`

	createGenerationEventsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_generation_events_created_at ON generation_events(created_at);
		CREATE INDEX IF NOT EXISTS idx_generation_events_outcome ON generation_events(outcome);`
)
