package diary

import (
	"context"
	"strings"
	"time"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/shared"
)

// Service handles diary business logic. Every operation takes the actor
// and scopes by its effective user ID; there is no admin bypass for diary
// content.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the effective user's entries.
func (s *Service) List(ctx context.Context, actor *identity.Actor) ([]Entry, error) {
	return s.repo.ListByOwner(ctx, actor.EffectiveUserID())
}

// Get fetches one of the effective user's entries.
func (s *Service) Get(ctx context.Context, actor *identity.Actor, id int64) (*Entry, error) {
	return s.repo.GetOwned(ctx, actor.EffectiveUserID(), id)
}

// Create inserts an entry for the effective user.
func (s *Service) Create(ctx context.Context, actor *identity.Actor, title, body, mood string, entryDate time.Time) (*Entry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrNotAllowed
	}
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}
	return s.repo.Create(ctx, Entry{
		OwnerID:   actor.EffectiveUserID(),
		Title:     title,
		Body:      body,
		Mood:      strings.TrimSpace(mood),
		EntryDate: entryDate,
	})
}

// Update rewrites one of the effective user's entries.
func (s *Service) Update(ctx context.Context, actor *identity.Actor, id int64, title, body, mood string) (*Entry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrNotAllowed
	}
	return s.repo.Update(ctx, Entry{
		ID:      id,
		OwnerID: actor.EffectiveUserID(),
		Title:   title,
		Body:    body,
		Mood:    strings.TrimSpace(mood),
	})
}

// Delete removes one of the effective user's entries.
func (s *Service) Delete(ctx context.Context, actor *identity.Actor, id int64) error {
	return s.repo.DeleteOwned(ctx, actor.EffectiveUserID(), id)
}
