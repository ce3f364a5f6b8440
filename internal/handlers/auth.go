package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/auth"
	"github.com/Sly695/GymEasIA/internal/models"
)

// AuthHandler handles registration, login and session lookup.
type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest represents the request to create an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the request to authenticate.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func toUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:       user.ID.String(),
		Email:    user.Email,
		Username: user.Username,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid registration payload")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondError(c, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"user":  toUserPayload(user),
		"token": token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"user":  toUserPayload(user),
		"token": token,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := UserIDFrom(c)

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("user lookup failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"user": toUserPayload(user)})
}
