package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sly695/GymEasIA/internal/database"
	"github.com/Sly695/GymEasIA/internal/models"
)

// ResultRepository persists inference results, one live result per video.
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository constructs a result repository backed by the SQL database.
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert creates or replaces the result for a video. A re-run overwrites the
// previous attempt's result; the unique constraint on video_id guarantees at
// most one row survives.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.InferenceResult) error {
	query := `
		INSERT INTO inference_results (id, video_id, reps, confidence, notes, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (video_id) DO UPDATE
		SET reps = EXCLUDED.reps,
		    confidence = EXCLUDED.confidence,
		    notes = EXCLUDED.notes,
		    raw = EXCLUDED.raw,
		    created_at = EXCLUDED.created_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		result.ID, result.VideoID, result.Reps, result.Confidence,
		result.Notes, result.Raw, result.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert inference result: %w", err)
	}
	return nil
}

// GetByVideoID returns the result for a video, if one exists.
func (r *ResultRepository) GetByVideoID(ctx context.Context, videoID uuid.UUID) (*models.InferenceResult, error) {
	var result models.InferenceResult
	query := `
		SELECT id, video_id, reps, confidence, notes, raw, created_at
		FROM inference_results WHERE video_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, videoID).Scan(
		&result.ID, &result.VideoID, &result.Reps, &result.Confidence,
		&result.Notes, &result.Raw, &result.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get inference result: %w", err)
	}
	return &result, nil
}
