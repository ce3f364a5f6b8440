package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sly695/GymEasIA/internal/database"
	"github.com/Sly695/GymEasIA/internal/models"
)

// VideoRepository persists video records and drives their status transitions.
type VideoRepository struct {
	db *database.DB
}

// NewVideoRepository constructs a video repository backed by the SQL database.
func NewVideoRepository(db *database.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a new video record.
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, user_id, filename, storage_key, status, processing_attempt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		video.ID, video.UserID, video.Filename, video.StorageKey,
		video.Status, video.ProcessingAttempt, video.CreatedAt, video.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

const videoColumns = `id, user_id, filename, storage_key, status, processing_attempt, created_at, updated_at`

func scanVideo(row *sql.Row) (*models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.UserID, &video.Filename, &video.StorageKey,
		&video.Status, &video.ProcessingAttempt, &video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

// GetByID looks up a video regardless of owner. Used by the orchestrator,
// which is invoked only after the trigger surface has checked ownership.
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	return scanVideo(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUser looks up a video scoped to its owner.
func (r *VideoRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 AND user_id = $2`
	return scanVideo(r.db.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns a user's videos, newest first.
func (r *VideoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.UserID, &video.Filename, &video.StorageKey,
			&video.Status, &video.ProcessingAttempt, &video.CreatedAt, &video.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// BeginAttempt marks the video PROCESSING and atomically increments its
// attempt counter, returning the new attempt token. The write is
// unconditional on status so that a manual re-trigger restarts processing
// from any state.
func (r *VideoRepository) BeginAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE videos
		SET status = $1, processing_attempt = processing_attempt + 1, updated_at = $2
		WHERE id = $3
		RETURNING processing_attempt
	`
	var attempt int
	err := r.db.QueryRowContext(ctx, query, models.VideoStatusProcessing, time.Now(), id).Scan(&attempt)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrVideoNotFound
		}
		return 0, fmt.Errorf("failed to begin attempt: %w", err)
	}
	return attempt, nil
}

// FinishAttempt writes a terminal status, guarded by the attempt token so a
// stale run cannot clobber the outcome of a newer one.
func (r *VideoRepository) FinishAttempt(ctx context.Context, id uuid.UUID, attempt int, status models.VideoStatus) error {
	query := `
		UPDATE videos
		SET status = $1, updated_at = $2
		WHERE id = $3 AND processing_attempt = $4
	`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id, attempt)
	if err != nil {
		return fmt.Errorf("failed to finish attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleAttempt
	}
	return nil
}

// Delete removes a video record. Deletion cascades to its inference result.
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// ListStuck returns videos that have sat in PROCESSING longer than the
// threshold. Used by the watchdog for operational visibility only.
func (r *VideoRepository) ListStuck(ctx context.Context, olderThan time.Time) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`
	rows, err := r.db.QueryContext(ctx, query, models.VideoStatusProcessing, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.UserID, &video.Filename, &video.StorageKey,
			&video.Status, &video.ProcessingAttempt, &video.CreatedAt, &video.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
