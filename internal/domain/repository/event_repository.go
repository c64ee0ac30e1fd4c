package repository

import (
	"context"
	"errors"

	"github.com/campusbuddy/events-api/internal/domain/entity"
)

// Sentinel outcomes of the registration path. The handler layer alone maps
// these to transport status codes.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventFull         = errors.New("event has reached maximum participants")
	ErrAlreadyRegistered = errors.New("user already registered for event")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrUserNotFound      = errors.New("user not found")
)

// EventRepository defines storage operations for event aggregates.
//
// Register must be atomic with respect to a single event's capacity counter
// and membership set: under arbitrary interleaving of concurrent callers the
// counter never exceeds MaxParticipants and a user id appears at most once.
type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	List(ctx context.Context) ([]*entity.Event, error)
	// Search is the datastore-side ranked full-text search over title,
	// description and category, used when no external index is configured.
	Search(ctx context.Context, query string) ([]*entity.Event, error)
	ListByOrganizer(ctx context.Context, userID string) ([]*entity.Event, error)
	ListRegisteredBy(ctx context.Context, userID string) ([]*entity.Event, error)
	// Register adds userID to the event's registered set and increments the
	// participant counter in one conditional update. It returns
	// ErrEventNotFound, ErrEventFull or ErrAlreadyRegistered on the
	// corresponding invariant violation, and the updated event on success.
	Register(ctx context.Context, eventID, userID string) (*entity.Event, error)
}
