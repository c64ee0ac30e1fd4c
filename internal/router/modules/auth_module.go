package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusbuddy/events-api/internal/container"
	repo "github.com/campusbuddy/events-api/internal/domain/repository"
	handlers "github.com/campusbuddy/events-api/internal/interface/http"
	"github.com/campusbuddy/events-api/internal/interface/middleware"
	"github.com/campusbuddy/events-api/pkg/helpers"
)

// AuthModule wires the authentication endpoints.
// Public: POST /api/auth/signup, POST /api/auth/login
// Protected: GET /api/auth/profile
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, users repo.UserRepository, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Users: users, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	{
		auth.GET("/auth/profile", m.Handler.Profile)
	}
}
