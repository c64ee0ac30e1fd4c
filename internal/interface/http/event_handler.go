package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/campusbuddy/events-api/internal/application"
	"github.com/campusbuddy/events-api/internal/domain/entity"
	repo "github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/internal/interface/middleware"
	"github.com/campusbuddy/events-api/pkg/response"
	"github.com/campusbuddy/events-api/pkg/validation"
)

// EventHandler is the transport boundary for event reads, creation and
// registration.
type EventHandler struct {
	Svc    *application.EventService
	Logger *logrus.Logger
}

func NewEventHandler(svc *application.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{Svc: svc, Logger: logger}
}

type createEventRequest struct {
	Title           string    `form:"title" json:"title" binding:"required"`
	Description     string    `form:"description" json:"description" binding:"required"`
	Date            time.Time `form:"date" json:"date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Location        string    `form:"location" json:"location" binding:"required"`
	MaxParticipants int       `form:"max_participants" json:"max_participants" binding:"required,gt=0"`
	Category        string    `form:"category" json:"category" binding:"required,oneof=academic cultural sports technical other"`
}

// Create POST /api/events — JSON body, or multipart form with an optional
// image part handed to the upload collaborator.
func (h *EventHandler) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	var image *application.ImageUpload
	if file, err := c.FormFile("image"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "unreadable image upload", nil)
			return
		}
		defer func() { _ = f.Close() }()
		image = &application.ImageUpload{
			Reader:      f,
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
		}
	}

	organizer := middleware.UserFromContext(c)
	e, err := h.Svc.Create(c.Request.Context(), organizer, application.CreateEventInput{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		Category:        entity.Category(req.Category),
	}, image)
	if err != nil {
		h.Logger.WithError(err).Error("event creation failed")
		response.Error[any](c, http.StatusBadRequest, "event creation failed", nil)
		return
	}

	response.Success(c, http.StatusCreated, e, "event created", nil)
}

// List GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("event listing failed")
		response.Error[any](c, http.StatusInternalServerError, "event listing failed", nil)
		return
	}
	response.Success(c, http.StatusOK, events, "events", gin.H{"results": len(events)})
}

// Search GET /api/events/search?query=
func (h *EventHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter is required", nil)
		return
	}
	events, err := h.Svc.Search(c.Request.Context(), query)
	if err != nil {
		h.Logger.WithError(err).WithField("query", query).Error("event search failed")
		response.Error[any](c, http.StatusInternalServerError, "event search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, events, "search results", gin.H{"results": len(events)})
}

// Dashboard GET /api/events/dashboard
func (h *EventHandler) Dashboard(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	d, err := h.Svc.Dashboard(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("dashboard lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "dashboard lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, d, "dashboard", nil)
}

// Get GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusNotFound, "event not found", nil)
		return
	}

	e, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			response.Error[any](c, http.StatusNotFound, "event not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("event_id", id).Error("event lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "event lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, e, "event", nil)
}

// Register POST /api/events/:id/register
func (h *EventHandler) Register(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusNotFound, "event not found", nil)
		return
	}

	user := middleware.UserFromContext(c)
	e, err := h.Svc.Register(c.Request.Context(), id, user)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEventNotFound):
			response.Error[any](c, http.StatusNotFound, "event not found", nil)
		case errors.Is(err, repo.ErrEventFull):
			response.Error[any](c, http.StatusBadRequest, "event is full", nil)
		case errors.Is(err, repo.ErrAlreadyRegistered):
			response.Error[any](c, http.StatusBadRequest, "you are already registered for this event", nil)
		default:
			h.Logger.WithError(err).WithField("event_id", id).Error("registration failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"event_id":             e.ID,
		"current_participants": e.CurrentParticipants,
	}, "successfully registered for event", nil)
}
