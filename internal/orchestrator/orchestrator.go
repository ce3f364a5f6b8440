package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/config"
	"github.com/Sly695/GymEasIA/internal/inference"
	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/repository"
)

// Fallback result written whenever processing fails, so pollers always see
// a result once a video reaches a terminal state.
const (
	fallbackReps       = 12
	fallbackConfidence = 0.78
	fallbackNotes      = "Mock RepNet inference (error occurred)"
)

// Orchestrator drives a video through its processing state machine:
// UPLOADED -> PROCESSING -> DONE | FAILED. It is stateless; every run
// re-reads the video from the store. All failures are absorbed here and
// surface only through the persisted status and result.
type Orchestrator struct {
	videos  VideoRepository
	results ResultRepository
	invoker Invoker
	store   ObjectStore
	logger  *zap.Logger

	timeout          time.Duration
	confidencePolicy config.ConfidencePolicy
}

// New builds an Orchestrator.
func New(videos VideoRepository, results ResultRepository, invoker Invoker, store ObjectStore, cfg config.InferenceConfig, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		videos:           videos,
		results:          results,
		invoker:          invoker,
		store:            store,
		logger:           logger,
		timeout:          cfg.Timeout,
		confidencePolicy: cfg.ConfidencePolicy,
	}
}

// Dispatch spawns a supervised processing run and returns immediately.
// The HTTP request lifecycle and the processing lifecycle are fully
// decoupled; a panic in the run is logged, never propagated.
func (o *Orchestrator) Dispatch(videoID uuid.UUID) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("video processing panicked",
					zap.String("video_id", videoID.String()),
					zap.Any("panic", r),
				)
			}
		}()
		o.ProcessVideo(context.Background(), videoID)
	}()
}

// ProcessVideo runs one processing attempt. It never returns an error: the
// caller observes the outcome only by polling the video's status. The
// terminal status write is guarded by an attempt token, so when runs for the
// same video overlap, only the newest attempt's outcome lands.
func (o *Orchestrator) ProcessVideo(ctx context.Context, videoID uuid.UUID) {
	video, err := o.videos.GetByID(ctx, videoID)
	if err != nil {
		o.logger.Error("video lookup failed, aborting attempt",
			zap.String("video_id", videoID.String()),
			zap.Error(err),
		)
		return
	}

	attempt, err := o.videos.BeginAttempt(ctx, videoID)
	if err != nil {
		o.logger.Error("failed to mark video processing",
			zap.String("video_id", videoID.String()),
			zap.Error(err),
		)
		return
	}

	result, err := o.runInference(ctx, video)
	if err != nil {
		o.finishFailed(ctx, videoID, attempt, err)
		return
	}

	if err := o.videos.FinishAttempt(ctx, videoID, attempt, models.VideoStatusDone); err != nil {
		o.logAttemptOutcome(videoID, attempt, err)
		return
	}

	upsert := &models.InferenceResult{
		ID:         uuid.New(),
		VideoID:    videoID,
		Reps:       result.Reps,
		Confidence: result.Confidence,
		Notes:      result.Notes,
		Raw:        result.Raw,
		CreatedAt:  time.Now(),
	}
	if err := o.results.Upsert(ctx, upsert); err != nil {
		o.logger.Error("failed to persist inference result",
			zap.String("video_id", videoID.String()),
			zap.Error(err),
		)
		return
	}

	o.logger.Info("video processed",
		zap.String("video_id", videoID.String()),
		zap.Int("attempt", attempt),
		zap.Int("reps", result.Reps),
		zap.Float64("confidence", result.Confidence),
	)
}

// runInference fetches the stored video to a temp file and performs one
// bounded round trip to the inference process.
func (o *Orchestrator) runInference(ctx context.Context, video *models.Video) (*inference.Result, error) {
	path, cleanup, err := o.fetchToTempFile(ctx, video)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ictx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := o.invoker.Invoke(ictx, path)
	if err != nil {
		if errors.Is(ictx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("inference timed out after %s: %w", o.timeout, err)
		}
		return nil, err
	}

	return o.applyConfidencePolicy(result)
}

func (o *Orchestrator) fetchToTempFile(ctx context.Context, video *models.Video) (string, func(), error) {
	reader, err := o.store.GetObject(ctx, video.StorageKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch video object: %w", err)
	}
	defer reader.Close()

	ext := filepath.Ext(video.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	tmp, err := os.CreateTemp("", fmt.Sprintf("infer-%s-*%s", video.ID, ext))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmp.Name(), cleanup, nil
}

// applyConfidencePolicy enforces the [0,1] bound the inference contract
// declares but the process does not always honor.
func (o *Orchestrator) applyConfidencePolicy(result *inference.Result) (*inference.Result, error) {
	c := result.Confidence
	if c >= 0 && c <= 1 {
		return result, nil
	}

	if o.confidencePolicy == config.ConfidenceReject {
		return nil, fmt.Errorf("confidence %v outside [0,1]", c)
	}

	if c < 0 {
		result.Confidence = 0
	} else {
		result.Confidence = 1
	}
	return result, nil
}

// finishFailed routes any processing failure to FAILED plus the fallback
// result. Status lands first; the result is written only if this attempt is
// still the current one, keeping status/result pairs consistent.
func (o *Orchestrator) finishFailed(ctx context.Context, videoID uuid.UUID, attempt int, cause error) {
	o.logger.Error("video processing failed",
		zap.String("video_id", videoID.String()),
		zap.Int("attempt", attempt),
		zap.Error(cause),
	)

	if err := o.videos.FinishAttempt(ctx, videoID, attempt, models.VideoStatusFailed); err != nil {
		o.logAttemptOutcome(videoID, attempt, err)
		return
	}

	fallback := &models.InferenceResult{
		ID:         uuid.New(),
		VideoID:    videoID,
		Reps:       fallbackReps,
		Confidence: fallbackConfidence,
		Notes:      fmt.Sprintf("%s: %v", fallbackNotes, cause),
		Raw:        models.JSONMap{},
		CreatedAt:  time.Now(),
	}
	if err := o.results.Upsert(ctx, fallback); err != nil {
		o.logger.Error("failed to persist fallback result",
			zap.String("video_id", videoID.String()),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) logAttemptOutcome(videoID uuid.UUID, attempt int, err error) {
	if errors.Is(err, repository.ErrStaleAttempt) {
		o.logger.Warn("discarding stale processing attempt",
			zap.String("video_id", videoID.String()),
			zap.Int("attempt", attempt),
		)
		return
	}
	o.logger.Error("failed to write terminal status",
		zap.String("video_id", videoID.String()),
		zap.Int("attempt", attempt),
		zap.Error(err),
	)
}
