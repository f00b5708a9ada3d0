package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"animehost/internal/ids"
	"animehost/internal/models"
	"animehost/internal/repository"
	"animehost/internal/security"
	"animehost/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrPasswordMismatch   = errors.New("Passwords do not match")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserRepo is the slice of the user repository the auth workflow needs.
type UserRepo interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

type AuthService struct {
	users    UserRepo
	sessions session.Store
	log      zerolog.Logger
}

func NewAuthService(users UserRepo, sessions session.Store, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		log:      log,
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates an account and logs it straight in, returning the
// session token. The confirmation check runs before anything is persisted.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, error) {
	if input.Password != input.ConfirmPassword {
		return "", ErrPasswordMismatch
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return "", errors.New("email and password required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		Username:     input.Username,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return token, nil
}

type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and establishes a session. A missing user and
// a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// Logout destroys the session record best-effort. Failures are logged and
// swallowed; the user is leaving either way.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Destroy(ctx, token); err != nil && !errors.Is(err, session.ErrNoSession) {
		s.log.Warn().Err(err).Msg("session destroy failed")
	}
}
