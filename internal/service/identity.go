// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/classfund/classfund/internal/auth"
	"github.com/classfund/classfund/internal/metrics"
	"github.com/classfund/classfund/internal/model"
	"github.com/classfund/classfund/internal/repository"
)

// Registration and login errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmptyName          = errors.New("display name is empty")
	ErrEmptyPassword      = errors.New("password is empty")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Email shape: local-part characters, @, domain with a 2-4 letter
// top-level label.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._+-]+@[a-zA-Z0-9._-]+\.[a-zA-Z]{2,4}$`)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 5

// UserStore is the account persistence the identity service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore holds issued sessions keyed by token.
type SessionStore interface {
	SetSession(ctx context.Context, token string, session *model.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// IdentityService validates and creates accounts and issues sessions.
type IdentityService struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	metrics    metrics.Recorder
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(users UserStore, sessions SessionStore, sessionTTL time.Duration, recorder metrics.Recorder) *IdentityService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IdentityService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email                string
	DisplayName          string
	Password             string
	PasswordConfirmation string
}

// Register validates the input and creates exactly one account row.
// Validation order is fixed and the first failure wins. The duplicate
// check runs twice: once up front for a friendly early answer, and
// again at the storage boundary via the unique constraint, which is the
// authoritative one under concurrent registrations.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if !emailRegex.MatchString(input.Email) {
		s.metrics.IncRegistrationRejected("email")
		return nil, ErrInvalidEmail
	}

	if input.Password != input.PasswordConfirmation {
		s.metrics.IncRegistrationRejected("pass")
		return nil, ErrPasswordMismatch
	}

	if input.DisplayName == "" {
		s.metrics.IncRegistrationRejected("name")
		return nil, ErrEmptyName
	}

	if input.Password == "" {
		s.metrics.IncRegistrationRejected("short_pass")
		return nil, ErrEmptyPassword
	}
	if len(input.Password) < minPasswordLength {
		s.metrics.IncRegistrationRejected("short_pass")
		return nil, ErrPasswordTooShort
	}

	// Early duplicate check; advisory only.
	if _, err := s.users.GetUserByEmail(ctx, input.Email); err == nil {
		s.metrics.IncRegistrationRejected("used")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	hash, salt, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRegistrationRejected("used")
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login verifies credentials and issues a session token.
// Unknown emails and wrong passwords both map to ErrInvalidCredentials
// so the response does not reveal which accounts exist.
func (s *IdentityService) Login(ctx context.Context, email, password string) (string, *model.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up account: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLoginFailed()
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	session := &model.Session{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.sessions.SetSession(ctx, token, session, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.IncLoginSucceeded()

	return token, session, nil
}

// Session resolves a token to its session, if any.
func (s *IdentityService) Session(ctx context.Context, token string) (*model.Session, error) {
	return s.sessions.GetSession(ctx, token)
}

// Logout revokes a session token. Revoking an unknown token is not an error.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}
