// Package testsupport provides in-memory repository and publisher doubles
// for exercising the application and transport layers without Postgres or
// RabbitMQ. The event double keeps the same registration semantics as the
// Postgres implementation: membership and counter mutate together under one
// lock, duplicates are reported ahead of capacity.
package testsupport

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusbuddy/events-api/internal/domain/entity"
	"github.com/campusbuddy/events-api/internal/domain/repository"
)

type UserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]*entity.User{}}
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// Delete removes a user, for exercising tokens whose subject is gone.
func (r *UserRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

var _ repository.UserRepository = (*UserRepo)(nil)

type EventRepo struct {
	mu     sync.Mutex
	Users  *UserRepo
	events map[string]*entity.Event
}

func NewEventRepo(users *UserRepo) *EventRepo {
	return &EventRepo{Users: users, events: map[string]*entity.Event{}}
}

func (r *EventRepo) Create(_ context.Context, e *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	e.CurrentParticipants = 0
	cp := *e
	cp.RegisteredUsers = nil
	r.events[e.ID] = &cp
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	r.mu.Lock()
	e, ok := r.events[id]
	if !ok {
		r.mu.Unlock()
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	cp.RegisteredUsers = append([]entity.UserRef(nil), e.RegisteredUsers...)
	r.mu.Unlock()
	return r.resolve(ctx, &cp)
}

func (r *EventRepo) List(ctx context.Context) ([]*entity.Event, error) {
	r.mu.Lock()
	out := make([]*entity.Event, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		cp.RegisteredUsers = nil
		out = append(out, &cp)
	}
	r.mu.Unlock()
	for _, e := range out {
		if _, err := r.resolve(ctx, e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Search matches on substring; ranking is not reproduced here.
func (r *EventRepo) Search(ctx context.Context, query string) ([]*entity.Event, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Event, 0)
	for _, e := range all {
		if containsFold(e.Title, query) || containsFold(e.Description, query) || containsFold(string(e.Category), query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EventRepo) ListByOrganizer(ctx context.Context, userID string) ([]*entity.Event, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Event, 0)
	for _, e := range all {
		if e.OrganizerID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EventRepo) ListRegisteredBy(ctx context.Context, userID string) ([]*entity.Event, error) {
	r.mu.Lock()
	ids := make([]string, 0)
	for id, e := range r.events {
		for _, u := range e.RegisteredUsers {
			if u.ID == userID {
				ids = append(ids, id)
				break
			}
		}
	}
	r.mu.Unlock()

	out := make([]*entity.Event, 0, len(ids))
	for _, id := range ids {
		e, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Register checks membership and capacity and applies both writes under one
// lock, so concurrent callers observe the same all-or-nothing behavior as
// the Postgres transaction.
func (r *EventRepo) Register(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	r.mu.Lock()
	e, ok := r.events[eventID]
	if !ok {
		r.mu.Unlock()
		return nil, repository.ErrEventNotFound
	}
	for _, u := range e.RegisteredUsers {
		if u.ID == userID {
			r.mu.Unlock()
			return nil, repository.ErrAlreadyRegistered
		}
	}
	if e.CurrentParticipants >= e.MaxParticipants {
		r.mu.Unlock()
		return nil, repository.ErrEventFull
	}
	e.RegisteredUsers = append(e.RegisteredUsers, entity.UserRef{ID: userID})
	e.CurrentParticipants++
	r.mu.Unlock()

	return r.GetByID(ctx, eventID)
}

func (r *EventRepo) resolve(ctx context.Context, e *entity.Event) (*entity.Event, error) {
	if r.Users == nil {
		return e, nil
	}
	if o, err := r.Users.GetByID(ctx, e.OrganizerID); err == nil {
		ref := o.Ref()
		e.Organizer = &ref
	}
	for i, ref := range e.RegisteredUsers {
		if u, err := r.Users.GetByID(ctx, ref.ID); err == nil {
			e.RegisteredUsers[i] = u.Ref()
		}
	}
	return e, nil
}

var _ repository.EventRepository = (*EventRepo)(nil)

// CapturePublisher records published jobs; FailWith forces enqueue errors.
type CapturePublisher struct {
	mu       sync.Mutex
	FailWith error
	jobs     [][]byte
}

func (p *CapturePublisher) PublishJSON(_ context.Context, body any) error {
	if p.FailWith != nil {
		return p.FailWith
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.jobs = append(p.jobs, b)
	p.mu.Unlock()
	return nil
}

func (p *CapturePublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// Last decodes the most recent payload into dst.
func (p *CapturePublisher) Last(dst any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.jobs) == 0 {
		return json.Unmarshal([]byte("null"), dst)
	}
	return json.Unmarshal(p.jobs[len(p.jobs)-1], dst)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
