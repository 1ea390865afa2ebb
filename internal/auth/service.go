package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/capria-app/capria/internal/shared"
)

// Notifier enqueues asynchronous user notifications. Implemented by the
// jobs client; nil disables notifications.
type Notifier interface {
	EnqueueWelcomeEmail(ctx context.Context, email, displayName string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// SignUp registers a new account with the default reader role.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, email, string(hash), displayName)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueWelcomeEmail(ctx, user.Email, user.DisplayName); err != nil && s.logger != nil {
			s.logger.Warn("enqueue welcome email", slog.Any("error", err))
		}
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// ValidateSession checks that the server still recognises the session the
// client presented. Returns shared.ErrSessionDesync when the row is gone
// or expired.
func (s *Service) ValidateSession(ctx context.Context, id string) (int64, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, shared.ErrSessionDesync
		}
		return 0, err
	}
	if sess.Expired(time.Now().UTC()) {
		return 0, shared.ErrSessionDesync
	}
	return sess.UserID, nil
}

// RecoverSession is the single bounded recovery attempt after a desync:
// re-register the session for a still-active user with a fresh expiry.
// On failure the caller must force sign-out, not retry.
func (s *Service) RecoverSession(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return shared.ErrSessionDesync
	}
	if !user.IsActive {
		return shared.ErrSessionDesync
	}
	if err := s.repo.CreateSession(ctx, id, userID, time.Now().UTC().Add(ttl), "", ""); err != nil {
		return shared.ErrSessionDesync
	}
	return nil
}
