package users

import (
	"context"
	"strings"

	"github.com/capria-app/capria/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns a page of users with pagination metadata.
func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	users, total, err := s.repo.ListUsers(ctx, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, perPage, total), nil
}

// GetProfile loads the profile for the given user ID.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

// UpdateProfile applies owner edits after trimming.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*User, error) {
	update.DisplayName = strings.TrimSpace(update.DisplayName)
	if update.DisplayName == "" {
		return nil, shared.ErrNotAllowed
	}
	return s.repo.UpdateProfile(ctx, userID, update)
}

// SetPermanentAccess toggles the permanent access flag on an account.
func (s *Service) SetPermanentAccess(ctx context.Context, userID int64, enabled bool) error {
	return s.repo.SetPermanentAccess(ctx, userID, enabled)
}

// SetStatus moves an account between active and suspended. Suspended accounts
// also lose the active flag so the app-access rule denies them.
func (s *Service) SetStatus(ctx context.Context, userID int64, status string) error {
	switch status {
	case "active":
		return s.repo.SetStatus(ctx, userID, status, true)
	case "suspended":
		return s.repo.SetStatus(ctx, userID, status, false)
	default:
		return shared.ErrNotAllowed
	}
}
