package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/service"
)

// VideoHandler handles video upload, listing and processing triggers.
type VideoHandler struct {
	service VideoService
	logger  *zap.Logger
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(service VideoService, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		service: service,
		logger:  logger,
	}
}

// Upload handles POST /api/videos/upload. The response returns as soon as
// the record exists; processing runs out-of-band.
func (h *VideoHandler) Upload(c *gin.Context) {
	userID := UserIDFrom(c)

	file, err := c.FormFile("video")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	video, err := h.service.CreateVideo(c.Request.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFile):
			respondError(c, http.StatusBadRequest, "Unsupported video format")
		case errors.Is(err, service.ErrFileTooLarge):
			respondError(c, http.StatusBadRequest, "Video file too large")
		default:
			h.logger.Error("video upload failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"video": video})
}

// List handles GET /api/videos.
func (h *VideoHandler) List(c *gin.Context) {
	userID := UserIDFrom(c)

	videos, err := h.service.ListVideos(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("video listing failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if videos == nil {
		videos = []models.Video{}
	}

	respondSuccess(c, http.StatusOK, gin.H{"videos": videos})
}

// Get handles GET /api/videos/:id.
func (h *VideoHandler) Get(c *gin.Context) {
	userID := UserIDFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Video not found")
		return
	}

	video, err := h.service.GetVideo(c.Request.Context(), videoID, userID)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, "Video not found")
			return
		}
		h.logger.Error("video lookup failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"video": video})
}

// Delete handles DELETE /api/videos/:id.
func (h *VideoHandler) Delete(c *gin.Context) {
	userID := UserIDFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Video not found")
		return
	}

	if err := h.service.DeleteVideo(c.Request.Context(), videoID, userID); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, "Video not found")
			return
		}
		h.logger.Error("video deletion failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Video deleted"})
}

// Process handles POST /api/videos/:id/process. It always acknowledges the
// trigger immediately; the outcome is observable only by polling.
func (h *VideoHandler) Process(c *gin.Context) {
	userID := UserIDFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Video not found")
		return
	}

	if err := h.service.StartProcessing(c.Request.Context(), videoID, userID); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, "Video not found")
			return
		}
		h.logger.Error("processing trigger failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Video processing started"})
}
