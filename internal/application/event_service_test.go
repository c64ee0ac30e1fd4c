package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/events-api/internal/application"
	"github.com/campusbuddy/events-api/internal/domain/entity"
	"github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/internal/testsupport"
	"github.com/campusbuddy/events-api/pkg/mailer"
)

type eventFixture struct {
	svc    *application.EventService
	users  *testsupport.UserRepo
	events *testsupport.EventRepo
	pub    *testsupport.CapturePublisher
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	users := testsupport.NewUserRepo()
	events := testsupport.NewEventRepo(users)
	pub := &testsupport.CapturePublisher{}
	svc := application.NewEventService(events, users, nil, "", nil, logrus.New(), nil, "", pub)
	return &eventFixture{svc: svc, users: users, events: events, pub: pub}
}

func (f *eventFixture) newUser(t *testing.T, name, email string) *entity.User {
	t.Helper()
	u := &entity.User{Name: name, Email: email, Password: "x", Role: entity.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *eventFixture) newEvent(t *testing.T, organizer *entity.User, title string, capacity int) *entity.Event {
	t.Helper()
	e, err := f.svc.Create(context.Background(), organizer, application.CreateEventInput{
		Title:           title,
		Description:     "description of " + title,
		Date:            time.Now().Add(48 * time.Hour),
		Location:        "Main Hall",
		MaxParticipants: capacity,
		Category:        entity.CategoryTechnical,
	}, nil)
	require.NoError(t, err)
	return e
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	f := newEventFixture(t)
	org := f.newUser(t, "Org", "org@x.com")
	ctx := context.Background()

	created := f.newEvent(t, org, "Go Workshop", 40)
	require.Equal(t, entity.StatusUpcoming, created.Status)
	require.Zero(t, created.CurrentParticipants)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, got.Title)
	require.Equal(t, "description of Go Workshop", got.Description)
	require.Equal(t, "Main Hall", got.Location)
	require.Equal(t, 40, got.MaxParticipants)
	require.Zero(t, got.CurrentParticipants)
	require.Equal(t, entity.CategoryTechnical, got.Category)
	require.NotNil(t, got.Organizer)
	require.Equal(t, org.ID, got.Organizer.ID)
	require.Equal(t, "Org", got.Organizer.Name)
}

func TestGetUnknownEvent(t *testing.T) {
	f := newEventFixture(t)
	_, err := f.svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestRegisterHappyPath(t *testing.T) {
	f := newEventFixture(t)
	org := f.newUser(t, "Org", "org@x.com")
	attendee := f.newUser(t, "Asha", "a@x.com")
	e := f.newEvent(t, org, "Tech Talk", 10)

	updated, err := f.svc.Register(context.Background(), e.ID, attendee)
	require.NoError(t, err)
	require.Equal(t, 1, updated.CurrentParticipants)
	require.Len(t, updated.RegisteredUsers, 1)
	require.Equal(t, attendee.ID, updated.RegisteredUsers[0].ID)

	// Creation email + registration email
	require.Equal(t, 2, f.pub.Count())
	var job mailer.EmailJob
	require.NoError(t, f.pub.Last(&job))
	require.Equal(t, mailer.TemplateEventRegistration, job.Template)
	require.Equal(t, "a@x.com", job.To)
	require.Equal(t, "Tech Talk", job.Data["EventTitle"])
}

func TestRegisterUnknownEvent(t *testing.T) {
	f := newEventFixture(t)
	attendee := f.newUser(t, "Asha", "a@x.com")

	_, err := f.svc.Register(context.Background(), "00000000-0000-0000-0000-000000000000", attendee)
	require.ErrorIs(t, err, repository.ErrEventNotFound)
}

// The required capacity/duplicate scenario: capacity 1, A registers, B is
// rejected for capacity, A again is rejected as a duplicate even though the
// event is also full. A failed attempt leaves the state untouched.
func TestRegisterCapacityAndDuplicateOrdering(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	org := f.newUser(t, "Org", "org@x.com")
	userA := f.newUser(t, "A", "a@x.com")
	userB := f.newUser(t, "B", "b@x.com")
	e := f.newEvent(t, org, "Tiny Meetup", 1)

	updated, err := f.svc.Register(ctx, e.ID, userA)
	require.NoError(t, err)
	require.Equal(t, 1, updated.CurrentParticipants)

	_, err = f.svc.Register(ctx, e.ID, userB)
	require.ErrorIs(t, err, repository.ErrEventFull)

	_, err = f.svc.Register(ctx, e.ID, userA)
	require.ErrorIs(t, err, repository.ErrAlreadyRegistered)

	got, err := f.svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentParticipants)
	require.Len(t, got.RegisteredUsers, 1)
	require.Equal(t, userA.ID, got.RegisteredUsers[0].ID)
}

func TestRegisterDuplicateLeavesStateUnchanged(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	org := f.newUser(t, "Org", "org@x.com")
	attendee := f.newUser(t, "Asha", "a@x.com")
	e := f.newEvent(t, org, "Tech Talk", 10)

	_, err := f.svc.Register(ctx, e.ID, attendee)
	require.NoError(t, err)
	before, err := f.svc.Get(ctx, e.ID)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, e.ID, attendee)
	require.ErrorIs(t, err, repository.ErrAlreadyRegistered)

	after, err := f.svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, before.CurrentParticipants, after.CurrentParticipants)
	require.Equal(t, before.RegisteredUsers, after.RegisteredUsers)
}

// N concurrent attempts for K remaining slots: exactly K succeed, the rest
// fail with the capacity error, and the counter never exceeds the maximum.
func TestRegisterConcurrentCapacity(t *testing.T) {
	const capacity = 5
	const attempts = 100

	f := newEventFixture(t)
	ctx := context.Background()
	org := f.newUser(t, "Org", "org@x.com")
	e := f.newEvent(t, org, "The Big Meetup", capacity)

	users := make([]*entity.User, attempts)
	for i := range users {
		users[i] = f.newUser(t, fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@x.com", i))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, full, unexpected int

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(u *entity.User) {
			defer wg.Done()
			_, err := f.svc.Register(ctx, e.ID, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, repository.ErrEventFull):
				full++
			default:
				unexpected++
			}
		}(users[i])
	}
	wg.Wait()

	require.Equal(t, capacity, succeeded)
	require.Equal(t, attempts-capacity, full)
	require.Zero(t, unexpected)

	got, err := f.svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, capacity, got.CurrentParticipants)
	require.Len(t, got.RegisteredUsers, capacity)
	require.LessOrEqual(t, got.CurrentParticipants, got.MaxParticipants)
}

func TestRegisterEnqueueFailureDoesNotRollBack(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	org := f.newUser(t, "Org", "org@x.com")
	attendee := f.newUser(t, "Asha", "a@x.com")
	e := f.newEvent(t, org, "Tech Talk", 10)

	f.pub.FailWith = context.DeadlineExceeded
	updated, err := f.svc.Register(ctx, e.ID, attendee)
	require.NoError(t, err)
	require.Equal(t, 1, updated.CurrentParticipants)
}

func TestDashboardSplitsCreatedAndRegistered(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	org := f.newUser(t, "Org", "org@x.com")
	attendee := f.newUser(t, "Asha", "a@x.com")

	mine := f.newEvent(t, org, "My Event", 10)
	theirs := f.newEvent(t, attendee, "Their Event", 10)

	_, err := f.svc.Register(ctx, mine.ID, attendee)
	require.NoError(t, err)

	d, err := f.svc.Dashboard(ctx, attendee.ID)
	require.NoError(t, err)
	require.Len(t, d.CreatedEvents, 1)
	require.Equal(t, theirs.ID, d.CreatedEvents[0].ID)
	require.Len(t, d.RegisteredEvents, 1)
	require.Equal(t, mine.ID, d.RegisteredEvents[0].ID)
}

func TestSearchFallsBackToDatastore(t *testing.T) {
	f := newEventFixture(t)
	org := f.newUser(t, "Org", "org@x.com")
	f.newEvent(t, org, "Jazz Night", 50)
	f.newEvent(t, org, "Chess Finals", 20)

	results, err := f.svc.Search(context.Background(), "jazz")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Jazz Night", results[0].Title)
}
