package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/repository"
)

// Status is the polled view of a video's processing state. Inference is nil
// while no result exists yet, which is the expected shape during PROCESSING.
type Status struct {
	VideoStatus models.VideoStatus
	Inference   *models.InferenceResult
}

// VideoFinder abstracts the owner-scoped video lookup the status path needs.
type VideoFinder interface {
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Video, error)
}

// ResultFinder abstracts the inference result lookup the status path needs.
type ResultFinder interface {
	GetByVideoID(ctx context.Context, videoID uuid.UUID) (*models.InferenceResult, error)
}

// StatusService is the read path clients poll until a terminal state.
type StatusService struct {
	videos  VideoFinder
	results ResultFinder
}

// NewStatusService creates a new status service.
func NewStatusService(videos VideoFinder, results ResultFinder) *StatusService {
	return &StatusService{
		videos:  videos,
		results: results,
	}
}

// GetStatus returns the video's current status and, if present, its
// inference result. A video owned by another user is reported as not found,
// indistinguishable from a genuinely absent id.
func (s *StatusService) GetStatus(ctx context.Context, videoID, userID uuid.UUID) (*Status, error) {
	video, err := s.videos.GetByIDForUser(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}

	// A result only accompanies a terminal state. While a run is in flight,
	// any earlier result is withheld so pollers never pair a PROCESSING
	// status with a stale outcome.
	if !video.Status.Terminal() {
		return &Status{VideoStatus: video.Status}, nil
	}

	result, err := s.results.GetByVideoID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			return &Status{VideoStatus: video.Status}, nil
		}
		return nil, fmt.Errorf("failed to load inference result: %w", err)
	}

	return &Status{VideoStatus: video.Status, Inference: result}, nil
}
