package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sly695/GymEasIA/internal/config"
	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/repository"
)

var (
	// ErrVideoNotFound mirrors the repository sentinel for callers of this package.
	ErrVideoNotFound = repository.ErrVideoNotFound
	// ErrInvalidFile is returned for uploads that fail validation.
	ErrInvalidFile = errors.New("invalid video file")
	// ErrFileTooLarge is returned for uploads above the configured cap.
	ErrFileTooLarge = errors.New("video file too large")
)

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// VideoStore abstracts the video record operations the service needs.
type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Video, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Video, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectStore abstracts the object storage operations the service needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// Dispatcher starts a processing run without blocking the caller.
type Dispatcher interface {
	Dispatch(videoID uuid.UUID)
}

// VideoService handles upload, listing, deletion and processing triggers.
type VideoService struct {
	videos     VideoStore
	storage    ObjectStore
	dispatcher Dispatcher
	maxBytes   int64
}

// NewVideoService creates a new video service.
func NewVideoService(videos VideoStore, storage ObjectStore, dispatcher Dispatcher, cfg config.ServerConfig) *VideoService {
	return &VideoService{
		videos:     videos,
		storage:    storage,
		dispatcher: dispatcher,
		maxBytes:   cfg.MaxUploadBytes,
	}
}

// CreateVideo stores the uploaded file, records the video as UPLOADED and
// dispatches processing. The returned video reflects the state at creation;
// processing continues after this call returns.
func (s *VideoService) CreateVideo(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*models.Video, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidFile, ext)
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	videoID := uuid.New()
	storageKey := fmt.Sprintf("videos/%s/source%s", videoID, ext)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	if err := s.storage.PutObject(ctx, storageKey, src, file.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	now := time.Now()
	video := &models.Video{
		ID:         videoID,
		UserID:     userID,
		Filename:   file.Filename,
		StorageKey: storageKey,
		Status:     models.VideoStatusUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to create video record: %w", err)
	}

	s.dispatcher.Dispatch(videoID)

	return video, nil
}

// ListVideos returns the user's videos, newest first.
func (s *VideoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	return s.videos.ListByUser(ctx, userID)
}

// GetVideo returns one of the user's videos.
func (s *VideoService) GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error) {
	return s.videos.GetByIDForUser(ctx, videoID, userID)
}

// DeleteVideo removes one of the user's videos: the stored object first,
// then the record. Deleting the record cascades to the inference result.
func (s *VideoService) DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error {
	video, err := s.videos.GetByIDForUser(ctx, videoID, userID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteObject(ctx, video.StorageKey); err != nil {
		return fmt.Errorf("failed to delete video object: %w", err)
	}

	return s.videos.Delete(ctx, videoID)
}

// StartProcessing re-triggers processing for one of the user's videos. The
// dispatch is fire-and-forget; any failure surfaces only via polled status.
func (s *VideoService) StartProcessing(ctx context.Context, videoID, userID uuid.UUID) error {
	if _, err := s.videos.GetByIDForUser(ctx, videoID, userID); err != nil {
		return err
	}
	s.dispatcher.Dispatch(videoID)
	return nil
}
