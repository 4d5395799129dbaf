// Package repository persists generation audit events.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
)

const generationEventsTable = "generation_events"

// GenerationLogRepository stores generation metadata in PostgreSQL
type GenerationLogRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewGenerationLogRepository creates a new generation log repository
func NewGenerationLogRepository(db *sql.DB, log *logger.Logger) *GenerationLogRepository {
	return &GenerationLogRepository{db: db, logger: log}
}

// Record inserts one event. Missing IDs and timestamps are filled in.
func (r *GenerationLogRepository) Record(ctx context.Context, event *interfaces.GenerationEvent) error {
	start := time.Now()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO generation_events (
			id, request_id, mode, transcript_length, outcome, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.RequestID,
		event.Mode,
		event.TranscriptLen,
		event.Outcome,
		event.Duration.Milliseconds(),
		event.CreatedAt,
	)
	r.logger.DatabaseOperation(ctx, "insert", generationEventsTable, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record generation event: %w", err)
	}

	return nil
}

// Recent returns the latest events, newest first
func (r *GenerationLogRepository) Recent(ctx context.Context, limit int) ([]*interfaces.GenerationEvent, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, request_id, mode, transcript_length, outcome, duration_ms, created_at
		FROM generation_events
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.DatabaseOperation(ctx, "select", generationEventsTable, time.Since(start), err)
		return nil, fmt.Errorf("failed to query generation events: %w", err)
	}
	defer rows.Close()

	var events []*interfaces.GenerationEvent
	for rows.Next() {
		var (
			e          interfaces.GenerationEvent
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Mode, &e.TranscriptLen, &e.Outcome, &durationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation event: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generation events: %w", err)
	}

	r.logger.DatabaseOperation(ctx, "select", generationEventsTable, time.Since(start), nil)
	return events, nil
}

// OutcomeCounts counts events per outcome since the given time
func (r *GenerationLogRepository) OutcomeCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT outcome, COUNT(*)
		FROM generation_events
		WHERE created_at >= $1
		GROUP BY outcome`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count generation events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

var _ interfaces.GenerationRecorder = (*GenerationLogRepository)(nil)
