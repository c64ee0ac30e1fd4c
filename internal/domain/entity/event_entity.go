package entity

import (
	"time"
)

// Category classifies an event for search and filtering.
type Category string

const (
	CategoryAcademic  Category = "academic"
	CategoryCultural  Category = "cultural"
	CategorySports    Category = "sports"
	CategoryTechnical Category = "technical"
	CategoryOther     Category = "other"
)

// Status is a plain enumerated attribute; transitions are not enforced here.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Event is the aggregate root for the event domain. CurrentParticipants and
// RegisteredUsers are mutated together under one conditional update; at every
// observable state CurrentParticipants == len(RegisteredUsers) and never
// exceeds MaxParticipants.
type Event struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Date                time.Time `json:"date"`
	Location            string    `json:"location"`
	OrganizerID         string    `json:"organizer_id"`
	Organizer           *UserRef  `json:"organizer,omitempty"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	RegisteredUsers     []UserRef `json:"registered_users,omitempty"`
	Category            Category  `json:"category"`
	Status              Status    `json:"status"`
	ImageURL            string    `json:"image_url,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// IsRegistered reports whether the given user already appears in the
// registered set.
func (e *Event) IsRegistered(userID string) bool {
	for _, u := range e.RegisteredUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}
