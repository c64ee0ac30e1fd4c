package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/events-api/internal/application"
	"github.com/campusbuddy/events-api/internal/domain/entity"
	"github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/internal/testsupport"
	"github.com/campusbuddy/events-api/pkg/helpers"
	"github.com/campusbuddy/events-api/pkg/mailer"
)

func newAuthService(pub *testsupport.CapturePublisher) (*application.AuthService, *testsupport.EventRepo) {
	users := testsupport.NewUserRepo()
	events := testsupport.NewEventRepo(users)
	logger := logrus.New()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	var p application.Publisher
	if pub != nil {
		p = pub
	}
	return application.NewAuthService(users, events, jwt, p, logger, "campusbuddy-test"), events
}

func TestSignupIssuesValidToken(t *testing.T) {
	pub := &testsupport.CapturePublisher{}
	svc, _ := newAuthService(pub)

	u, token, exp, err := svc.Signup(context.Background(), application.SignupInput{
		Name:     "Asha",
		Email:    "a@x.com",
		Password: "pw123pw123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, entity.RoleUser, u.Role)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	claims, err := helpers.NewJWTManager("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)

	// Welcome email enqueued
	require.Equal(t, 1, pub.Count())
	var job mailer.EmailJob
	require.NoError(t, pub.Last(&job))
	require.Equal(t, "a@x.com", job.To)
	require.Equal(t, mailer.TemplateWelcome, job.Template)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(nil)
	ctx := context.Background()

	_, _, _, err := svc.Signup(ctx, application.SignupInput{Name: "A", Email: "dup@x.com", Password: "pw123pw123"})
	require.NoError(t, err)

	_, _, _, err = svc.Signup(ctx, application.SignupInput{Name: "B", Email: "dup@x.com", Password: "pw456pw456"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestLoginAfterSignup(t *testing.T) {
	svc, _ := newAuthService(nil)
	ctx := context.Background()

	_, _, _, err := svc.Signup(ctx, application.SignupInput{Name: "Asha", Email: "a@x.com", Password: "pw123pw123"})
	require.NoError(t, err)

	u, token, _, err := svc.Login(ctx, "a@x.com", "pw123pw123")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", u.Email)
	require.NotEmpty(t, token)
}

func TestLoginWrongPasswordAndUnknownEmailAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(nil)
	ctx := context.Background()

	_, _, _, err := svc.Signup(ctx, application.SignupInput{Name: "Asha", Email: "a@x.com", Password: "pw123pw123"})
	require.NoError(t, err)

	_, _, _, errWrongPw := svc.Login(ctx, "a@x.com", "not-the-password")
	_, _, _, errNoUser := svc.Login(ctx, "ghost@x.com", "pw123pw123")

	require.ErrorIs(t, errWrongPw, application.ErrInvalidCredentials)
	require.ErrorIs(t, errNoUser, application.ErrInvalidCredentials)
	require.Equal(t, errWrongPw.Error(), errNoUser.Error())
}

func TestSignupEnqueueFailureDoesNotFailSignup(t *testing.T) {
	pub := &testsupport.CapturePublisher{FailWith: context.DeadlineExceeded}
	svc, _ := newAuthService(pub)

	_, token, _, err := svc.Signup(context.Background(), application.SignupInput{
		Name: "Asha", Email: "a@x.com", Password: "pw123pw123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestProfileListsEventReferences(t *testing.T) {
	pub := &testsupport.CapturePublisher{}
	svc, events := newAuthService(pub)
	ctx := context.Background()

	organizer, _, _, err := svc.Signup(ctx, application.SignupInput{Name: "Org", Email: "org@x.com", Password: "pw123pw123"})
	require.NoError(t, err)

	e := &entity.Event{Title: "Tech Talk", Description: "d", Date: time.Now(), Location: "Hall",
		OrganizerID: organizer.ID, MaxParticipants: 5, Category: entity.CategoryTechnical, Status: entity.StatusUpcoming}
	require.NoError(t, events.Create(ctx, e))

	p, err := svc.Profile(ctx, organizer.ID)
	require.NoError(t, err)
	require.Equal(t, []string{e.ID}, p.CreatedEvents)
	require.Empty(t, p.RegisteredEvents)
}
