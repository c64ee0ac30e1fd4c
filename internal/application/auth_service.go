package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campusbuddy/events-api/internal/domain/entity"
	repo "github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/pkg/helpers"
	"github.com/campusbuddy/events-api/pkg/mailer"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// response never leaks which of the two failed.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// AuthService issues signed bearer tokens after verifying credentials and
// resolves authenticated identities back to user records.
type AuthService struct {
	Users   repo.UserRepository
	Events  repo.EventRepository
	JWT     *helpers.JWTManager
	Pub     Publisher
	Logger  *logrus.Logger
	AppName string
}

func NewAuthService(users repo.UserRepository, events repo.EventRepository, jwt *helpers.JWTManager, pub Publisher, logger *logrus.Logger, appName string) *AuthService {
	return &AuthService{Users: users, Events: events, JWT: jwt, Pub: pub, Logger: logger, AppName: appName}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
	Phone    string
}

// Signup creates the user, issues a token and enqueues the welcome email.
// A duplicate email surfaces as repository.ErrDuplicateEmail.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, string, time.Time, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     role,
		Phone:    in.Phone,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	publishEmail(ctx, s.Pub, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.Name, "AppName": s.AppName},
	})

	return u, token, exp, nil
}

// Login verifies the password hash and issues a token. bcrypt's comparison is
// constant-time with respect to the candidate password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// Profile is the authenticated user's record with the ids of the events they
// created and registered for.
type Profile struct {
	User             *entity.User `json:"user"`
	CreatedEvents    []string     `json:"created_events"`
	RegisteredEvents []string     `json:"registered_events"`
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := s.Events.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	registered, err := s.Events.ListRegisteredBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:             u,
		CreatedEvents:    eventIDs(created),
		RegisteredEvents: eventIDs(registered),
	}, nil
}

func eventIDs(events []*entity.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
