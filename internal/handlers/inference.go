package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/service"
)

// InferenceHandler serves the polling read path.
type InferenceHandler struct {
	service StatusService
	logger  *zap.Logger
}

// NewInferenceHandler creates a new inference handler.
func NewInferenceHandler(service StatusService, logger *zap.Logger) *InferenceHandler {
	return &InferenceHandler{
		service: service,
		logger:  logger,
	}
}

// Get handles GET /api/inference/:videoId. While no result exists the
// response carries the video status alone; that is the expected shape
// during PROCESSING, not an error.
func (h *InferenceHandler) Get(c *gin.Context) {
	userID := UserIDFrom(c)

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Video not found")
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), videoID, userID)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, "Video not found")
			return
		}
		h.logger.Error("status lookup failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	data := gin.H{"videoStatus": status.VideoStatus}
	if status.Inference != nil {
		data["inference"] = gin.H{
			"reps":       status.Inference.Reps,
			"confidence": status.Inference.Confidence,
			"notes":      status.Inference.Notes,
			"raw":        status.Inference.Raw,
			"createdAt":  status.Inference.CreatedAt,
		}
	}

	respondSuccess(c, http.StatusOK, data)
}
