package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/auth"
	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/service"
)

type stubVideoService struct {
	video     *models.Video
	videos    []models.Video
	err       error
	processed []uuid.UUID
	deleted   []uuid.UUID
	createErr error
}

func (s *stubVideoService) CreateVideo(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*models.Video, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.video, nil
}

func (s *stubVideoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	return s.videos, s.err
}

func (s *stubVideoService) GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.video, nil
}

func (s *stubVideoService) DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, videoID)
	return nil
}

func (s *stubVideoService) StartProcessing(ctx context.Context, videoID, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.processed = append(s.processed, videoID)
	return nil
}

type stubStatusService struct {
	status *service.Status
	err    error
}

func (s *stubStatusService) GetStatus(ctx context.Context, videoID, userID uuid.UUID) (*service.Status, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}

type stubAuthService struct {
	user  *models.User
	token string
	err   error
}

func (s *stubAuthService) Register(ctx context.Context, in auth.RegisterInput) (*models.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.token, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.token, nil
}

func (s *stubAuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

// injectUser stands in for the auth middleware in handler-level tests.
func injectUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetUserID(c, userID)
		c.Next()
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestGetInferenceWhileProcessing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	videoID := uuid.New()

	h := NewInferenceHandler(&stubStatusService{
		status: &service.Status{VideoStatus: models.VideoStatusProcessing},
	}, zap.NewNop())

	engine := gin.New()
	engine.GET("/api/inference/:videoId", injectUser(userID), h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/inference/"+videoID.String(), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["videoStatus"] != "PROCESSING" {
		t.Errorf("expected PROCESSING, got %v", data["videoStatus"])
	}
	if _, present := data["inference"]; present {
		t.Error("expected no inference field while processing")
	}
}

func TestGetInferenceDone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	videoID := uuid.New()

	h := NewInferenceHandler(&stubStatusService{
		status: &service.Status{
			VideoStatus: models.VideoStatusDone,
			Inference: &models.InferenceResult{
				VideoID:    videoID,
				Reps:       12,
				Confidence: 0.91,
				Notes:      "n",
				Raw:        models.JSONMap{},
				CreatedAt:  time.Now(),
			},
		},
	}, zap.NewNop())

	engine := gin.New()
	engine.GET("/api/inference/:videoId", injectUser(userID), h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/inference/"+videoID.String(), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	inference := data["inference"].(map[string]any)
	if inference["reps"].(float64) != 12 {
		t.Errorf("expected reps=12, got %v", inference["reps"])
	}
	if inference["confidence"].(float64) != 0.91 {
		t.Errorf("expected confidence=0.91, got %v", inference["confidence"])
	}
	if data["videoStatus"] != "DONE" {
		t.Errorf("expected DONE, got %v", data["videoStatus"])
	}
}

func TestGetInferenceForeignVideoIndistinguishable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	h := NewInferenceHandler(&stubStatusService{err: service.ErrVideoNotFound}, zap.NewNop())

	engine := gin.New()
	engine.GET("/api/inference/:videoId", injectUser(userID), h.Get)

	// A foreign video id and a syntactically invalid id must produce the
	// same response shape.
	foreign := httptest.NewRecorder()
	engine.ServeHTTP(foreign, httptest.NewRequest(http.MethodGet, "/api/inference/"+uuid.NewString(), nil))

	garbage := httptest.NewRecorder()
	engine.ServeHTTP(garbage, httptest.NewRequest(http.MethodGet, "/api/inference/not-a-uuid", nil))

	for _, rec := range []*httptest.ResponseRecorder{foreign, garbage} {
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["success"] != false || body["error"] != "Video not found" {
			t.Errorf("unexpected body: %v", body)
		}
	}
	if foreign.Body.String() != garbage.Body.String() {
		t.Error("foreign and absent video responses must be identical")
	}
}

func TestProcessAcknowledgesImmediately(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	videoID := uuid.New()
	svc := &stubVideoService{}

	h := NewVideoHandler(svc, zap.NewNop())
	engine := gin.New()
	engine.POST("/api/videos/:id/process", injectUser(userID), h.Process)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/"+videoID.String()+"/process", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["message"] != "Video processing started" {
		t.Errorf("unexpected message: %v", data["message"])
	}
	if len(svc.processed) != 1 || svc.processed[0] != videoID {
		t.Errorf("expected processing trigger for %s", videoID)
	}
}

func TestDeleteVideo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	videoID := uuid.New()
	svc := &stubVideoService{}

	h := NewVideoHandler(svc, zap.NewNop())
	engine := gin.New()
	engine.DELETE("/api/videos/:id", injectUser(userID), h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/videos/"+videoID.String(), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["message"] != "Video deleted" {
		t.Errorf("unexpected message: %v", data["message"])
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != videoID {
		t.Errorf("expected deletion of %s", videoID)
	}
}

func TestDeleteVideoNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	h := NewVideoHandler(&stubVideoService{err: service.ErrVideoNotFound}, zap.NewNop())
	engine := gin.New()
	engine.DELETE("/api/videos/:id", injectUser(userID), h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/videos/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	h := NewVideoHandler(&stubVideoService{}, zap.NewNop())
	engine := gin.New()
	engine.POST("/api/videos/upload", injectUser(userID), h.Upload)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", strings.NewReader(""))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "No file uploaded" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestUploadRejectsInvalidFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	h := NewVideoHandler(&stubVideoService{createErr: service.ErrInvalidFile}, zap.NewNop())
	engine := gin.New()
	engine.POST("/api/videos/upload", injectUser(userID), h.Upload)

	var buf strings.Builder
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("video", "malware.exe")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("nope"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewAuthHandler(&stubAuthService{}, zap.NewNop())
	engine := gin.New()
	engine.POST("/api/auth/register", h.Register)

	cases := []string{
		`{"email":"not-an-email","username":"athlete","password":"hunter22"}`,
		`{"email":"a@b.com","username":"ab","password":"hunter22"}`,
		`{"email":"a@b.com","username":"athlete","password":"short"}`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewAuthHandler(&stubAuthService{err: auth.ErrInvalidCredentials}, zap.NewNop())
	engine := gin.New()
	engine.POST("/api/auth/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@b.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
