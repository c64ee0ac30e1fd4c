package router

import (
	"github.com/campusbuddy/events-api/internal/application"
	"github.com/campusbuddy/events-api/internal/container"
	pginfra "github.com/campusbuddy/events-api/internal/infrastructure/postgres"
	handlers "github.com/campusbuddy/events-api/internal/interface/http"
	"github.com/campusbuddy/events-api/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	eventRepo := pginfra.NewEventRepository(container.GetPGPool())

	// A nil publisher degrades notifications to no-ops; never wrap a nil
	// pointer in the interface.
	var pub application.Publisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	authSvc := application.NewAuthService(
		userRepo,
		eventRepo,
		container.GetJWT(),
		pub,
		container.GetLogger(),
		cfg.AppName,
	)
	eventSvc := application.NewEventService(
		eventRepo,
		userRepo,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESEventsIndex,
		pub,
	)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger())
	eventHandler := handlers.NewEventHandler(eventSvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, userRepo, container.GetJWT()))
	r.Add(modules.NewEventModule(eventHandler, userRepo, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
