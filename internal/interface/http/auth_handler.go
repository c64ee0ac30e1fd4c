package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusbuddy/events-api/internal/application"
	"github.com/campusbuddy/events-api/internal/domain/entity"
	repo "github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/internal/interface/middleware"
	"github.com/campusbuddy/events-api/pkg/response"
	"github.com/campusbuddy/events-api/pkg/validation"
)

// AuthHandler is the transport boundary for signup, login and profile. It is
// the only place auth error kinds become status codes.
type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,oneof=user organizer admin"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			response.Error[any](c, http.StatusBadRequest, "email already in use", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Error[any](c, http.StatusInternalServerError, "signup failed", nil)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"token": token, "user": u}, "signup successful", gin.H{"token_expires_at": exp})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// One generic message regardless of which credential was wrong.
		response.Error[any](c, http.StatusUnauthorized, "incorrect email or password", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "user": u}, "login successful", gin.H{"token_expires_at": exp})
}

// Profile GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Profile(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("profile lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "profile lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}
