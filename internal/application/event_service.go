package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/campusbuddy/events-api/internal/domain/entity"
	repo "github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/pkg/helpers"
	"github.com/campusbuddy/events-api/pkg/mailer"
)

const (
	eventListCacheKey = "events:all"
	eventListCacheTTL = 30 * time.Second
)

// EventService exposes event reads, event creation and the registration
// coordinator. GCS, Redis, Elasticsearch and the publisher are optional;
// a nil client degrades that concern rather than failing the operation.
type EventService struct {
	Events        repo.EventRepository
	Users         repo.UserRepository
	GCS           *storage.Client
	GCSBucket     string
	Redis         *redis.Client
	Logger        *logrus.Logger
	ES            *elasticsearch.Client
	ESEventsIndex string
	Pub           Publisher
}

func NewEventService(events repo.EventRepository, users repo.UserRepository, gcs *storage.Client, gcsBucket string, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esEventsIndex string, pub Publisher) *EventService {
	return &EventService{
		Events:        events,
		Users:         users,
		GCS:           gcs,
		GCSBucket:     gcsBucket,
		Redis:         rdb,
		Logger:        logger,
		ES:            es,
		ESEventsIndex: esEventsIndex,
		Pub:           pub,
	}
}

type CreateEventInput struct {
	Title           string
	Description     string
	Date            time.Time
	Location        string
	MaxParticipants int
	Category        entity.Category
}

// ImageUpload is the optional binary payload attached to event creation.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// Create persists a new event stamped with the organizer's identity. The
// image, search index and creation email are collaborator calls: the image
// reference is attached verbatim, the other two are best-effort after the
// event is committed.
func (s *EventService) Create(ctx context.Context, organizer *entity.User, in CreateEventInput, image *ImageUpload) (*entity.Event, error) {
	e := &entity.Event{
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date,
		Location:        in.Location,
		OrganizerID:     organizer.ID,
		MaxParticipants: in.MaxParticipants,
		Category:        in.Category,
		Status:          entity.StatusUpcoming,
	}

	if image != nil {
		url, err := s.uploadImage(ctx, organizer.ID, image)
		if err != nil {
			return nil, err
		}
		e.ImageURL = url
	}

	if err := s.Events.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Organizer = &entity.UserRef{ID: organizer.ID, Name: organizer.Name, Email: organizer.Email}

	s.invalidateListCache(ctx)
	s.indexEvent(ctx, e)
	publishEmail(ctx, s.Pub, s.Logger, mailer.EmailJob{
		To:       organizer.Email,
		Template: mailer.TemplateEventCreated,
		Data:     map[string]any{"Name": organizer.Name, "EventTitle": e.Title},
	})

	return e, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*entity.Event, error) {
	return s.Events.GetByID(ctx, id)
}

// List returns all events with organizers resolved, cached briefly in Redis.
func (s *EventService) List(ctx context.Context) ([]*entity.Event, error) {
	if s.Redis != nil {
		var cached []*entity.Event
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, eventListCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	events, err := s.Events.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, eventListCacheKey, events, eventListCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("event list cache write failed")
		}
	}
	return events, nil
}

// Search returns events ordered by relevance. The Elasticsearch index is the
// primary path; without it the datastore's ranked full-text search answers
// the same contract.
func (s *EventService) Search(ctx context.Context, query string) ([]*entity.Event, error) {
	if s.ES == nil || s.ESEventsIndex == "" {
		return s.Events.Search(ctx, query)
	}

	ids, err := s.searchIndex(ctx, query)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, falling back to datastore")
		}
		return s.Events.Search(ctx, query)
	}

	events := make([]*entity.Event, 0, len(ids))
	for _, id := range ids {
		e, err := s.Events.GetByID(ctx, id)
		if err != nil {
			// Index entries can outlive rows; skip the stale hit.
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// Dashboard is the caller's created and registered events, fully resolved.
type Dashboard struct {
	CreatedEvents    []*entity.Event `json:"created_events"`
	RegisteredEvents []*entity.Event `json:"registered_events"`
}

func (s *EventService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	created, err := s.Events.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	registered, err := s.Events.ListRegisteredBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{CreatedEvents: created, RegisteredEvents: registered}, nil
}

// Register runs the registration coordinator for one (event, user) pair. The
// capacity and duplicate invariants are enforced by the repository's atomic
// conditional update; this layer orders the typed outcomes and fires the
// confirmation email, whose failure never rolls anything back.
func (s *EventService) Register(ctx context.Context, eventID string, user *entity.User) (*entity.Event, error) {
	e, err := s.Events.Register(ctx, eventID, user.ID)
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	s.indexEvent(ctx, e)
	publishEmail(ctx, s.Pub, s.Logger, mailer.EmailJob{
		To:       user.Email,
		Template: mailer.TemplateEventRegistration,
		Data:     map[string]any{"Name": user.Name, "EventTitle": e.Title},
	})

	return e, nil
}

func (s *EventService) uploadImage(ctx context.Context, organizerID string, img *ImageUpload) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(img.Filename))
	objectPath := filepath.ToSlash(filepath.Join("events", organizerID, uuid.NewString()+ext))
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, img.ContentType, img.Reader)
}

func (s *EventService) invalidateListCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, eventListCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("event list cache invalidation failed")
	}
}

func (s *EventService) indexEvent(ctx context.Context, e *entity.Event) {
	if s.ES == nil || s.ESEventsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":                   e.ID,
		"title":                e.Title,
		"description":          e.Description,
		"category":             e.Category,
		"location":             e.Location,
		"date":                 e.Date.Format(time.RFC3339Nano),
		"status":               e.Status,
		"current_participants": e.CurrentParticipants,
		"max_participants":     e.MaxParticipants,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESEventsIndex, DocumentID: e.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("event_id", e.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("event_id", e.ID).Warn("es index response error")
	}
}

func (s *EventService) searchIndex(ctx context.Context, query string) ([]string, error) {
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "description", "category"},
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(q)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESEventsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
