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

// EventModule wires the event endpoints. Everything requires a bearer token;
// registration carries a per-user rate limit on top.
type EventModule struct {
	Handler *handlers.EventHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
}

func NewEventModule(h *handlers.EventHandler, users repo.UserRepository, jwt *helpers.JWTManager) *EventModule {
	return &EventModule{Handler: h, Users: users, JWT: jwt}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/events")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))

	registerLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)

	{
		auth.POST("", m.Handler.Create)
		auth.GET("", m.Handler.List)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/dashboard", m.Handler.Dashboard)
		auth.GET("/:id", m.Handler.Get)
		auth.POST("/:id/register", registerLimiter, m.Handler.Register)
	}
}
