package handlers

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/Sly695/GymEasIA/internal/auth"
	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/service"
)

// AuthService exposes the credential operations the handlers depend on.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// VideoService exposes the upload/trigger surface the handlers depend on.
type VideoService interface {
	CreateVideo(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*models.Video, error)
	ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error)
	GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error)
	DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error
	StartProcessing(ctx context.Context, videoID, userID uuid.UUID) error
}

// StatusService exposes the polling read path the handlers depend on.
type StatusService interface {
	GetStatus(ctx context.Context, videoID, userID uuid.UUID) (*service.Status, error)
}
