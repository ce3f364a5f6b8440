package router

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/auth"
	"github.com/Sly695/GymEasIA/internal/handlers"
	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/service"
)

type stubVerifier struct {
	userID  uuid.UUID
	unknown bool
}

func (s *stubVerifier) VerifyToken(token string) (uuid.UUID, error) {
	if token != "valid-token" {
		return uuid.Nil, auth.ErrInvalidToken
	}
	return s.userID, nil
}

func (s *stubVerifier) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.unknown {
		return nil, errors.New("user not found")
	}
	return &models.User{ID: id}, nil
}

type stubAuthService struct{}

func (s *stubAuthService) Register(ctx context.Context, in auth.RegisterInput) (*models.User, string, error) {
	return &models.User{ID: uuid.New()}, "t", nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	return &models.User{ID: uuid.New()}, "t", nil
}

func (s *stubAuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return &models.User{ID: id}, nil
}

type stubVideoService struct {
	listed bool
}

func (s *stubVideoService) CreateVideo(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*models.Video, error) {
	return &models.Video{ID: uuid.New(), UserID: userID}, nil
}

func (s *stubVideoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	s.listed = true
	return nil, nil
}

func (s *stubVideoService) GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error) {
	return nil, service.ErrVideoNotFound
}

func (s *stubVideoService) DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error {
	return nil
}

func (s *stubVideoService) StartProcessing(ctx context.Context, videoID, userID uuid.UUID) error {
	return nil
}

type stubStatusService struct{}

func (s *stubStatusService) GetStatus(ctx context.Context, videoID, userID uuid.UUID) (*service.Status, error) {
	return &service.Status{VideoStatus: models.VideoStatusUploaded}, nil
}

func setupTestRouter(verifier *stubVerifier) (*gin.Engine, *stubVideoService) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	videos := &stubVideoService{}

	engine := New(Deps{
		Auth:      handlers.NewAuthHandler(&stubAuthService{}, logger),
		Videos:    handlers.NewVideoHandler(videos, logger),
		Inference: handlers.NewInferenceHandler(&stubStatusService{}, logger),
		Verifier:  verifier,
		Logger:    logger,
	})
	return engine, videos
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := setupTestRouter(&stubVerifier{userID: uuid.New()})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequiredNoToken(t *testing.T) {
	engine, _ := setupTestRouter(&stubVerifier{userID: uuid.New()})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "No token provided" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	engine, _ := setupTestRouter(&stubVerifier{userID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredUnknownUser(t *testing.T) {
	engine, _ := setupTestRouter(&stubVerifier{userID: uuid.New(), unknown: true})

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredValidToken(t *testing.T) {
	engine, videos := setupTestRouter(&stubVerifier{userID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !videos.listed {
		t.Error("expected request to reach the handler")
	}
}
