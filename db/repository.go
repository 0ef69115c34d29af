package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Generation statuses recorded in history.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// GenerationRecord is one row of generation history.
type GenerationRecord struct {
	ID             string
	Prompt         string
	EnrichedPrompt string
	Steps          int
	Guidance       float64
	Status         string
	Enriched       bool
	CreatedAt      time.Time
}

// Repository provides access to the generation history table.
type Repository struct {
	database *sql.DB
}

// NewRepository creates a Repository over an open connection.
func NewRepository(database *sql.DB) *Repository {
	return &Repository{database: database}
}

// Insert stores one generation record. A zero CreatedAt is set to now.
func (r *Repository) Insert(ctx context.Context, rec GenerationRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("generation record requires an id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.database.ExecContext(ctx, `
		INSERT INTO generations (id, prompt, enriched_prompt, steps, guidance, status, enriched, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Prompt, rec.EnrichedPrompt, rec.Steps, rec.Guidance,
		rec.Status, boolToInt(rec.Enriched), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.database.QueryContext(ctx, `
		SELECT id, prompt, enriched_prompt, steps, guidance, status, enriched, created_at
		FROM generations
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var enriched int
		if err := rows.Scan(&rec.ID, &rec.Prompt, &rec.EnrichedPrompt, &rec.Steps,
			&rec.Guidance, &rec.Status, &enriched, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		rec.Enriched = enriched != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of history records.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM generations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation records: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
