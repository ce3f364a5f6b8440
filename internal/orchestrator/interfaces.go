package orchestrator

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/Sly695/GymEasIA/internal/inference"
	"github.com/Sly695/GymEasIA/internal/models"
)

// VideoRepository abstracts the video status mutations the orchestrator needs.
// Keeping this minimal makes it easy to inject mocks in tests.
type VideoRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	BeginAttempt(ctx context.Context, id uuid.UUID) (int, error)
	FinishAttempt(ctx context.Context, id uuid.UUID, attempt int, status models.VideoStatus) error
}

// ResultRepository abstracts inference result persistence.
type ResultRepository interface {
	Upsert(ctx context.Context, result *models.InferenceResult) error
}

// Invoker performs one round trip to the external inference process.
type Invoker interface {
	Invoke(ctx context.Context, videoPath string) (*inference.Result, error)
}

// ObjectStore fetches stored video objects so the inference process can be
// handed a local file path.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}
