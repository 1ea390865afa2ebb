package albums

import (
	"context"
	"strings"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/permissions"
	"github.com/capria-app/capria/internal/shared"
)

// Service handles album business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListFor returns the albums visible to the actor. Admins read everything;
// everyone else gets rows scoped to the effective owner in SQL. The final
// permissions.AccessibleItems pass is advisory: it documents the admin
// bypass without being a security boundary of its own.
func (s *Service) ListFor(ctx context.Context, actor *identity.Actor) ([]Album, error) {
	var (
		list []Album
		err  error
	)
	if actor.HasEffectiveRole(identity.RoleAdmin) {
		list, err = s.repo.ListAll(ctx)
	} else {
		list, err = s.repo.ListByOwner(ctx, actor.EffectiveUserID())
	}
	if err != nil {
		return nil, err
	}
	return permissions.AccessibleItems(actor, list), nil
}

// Create inserts an album owned by the effective identity. Authors need
// the editor role; admins may always create.
func (s *Service) Create(ctx context.Context, actor *identity.Actor, title, description string) (*Album, error) {
	if !actor.HasEffectiveRole(identity.RoleEditor) && !actor.HasEffectiveRole(identity.RoleAdmin) {
		return nil, shared.ErrNotAllowed
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrNotAllowed
	}
	return s.repo.Create(ctx, Album{
		OwnerID:     actor.EffectiveUserID(),
		Title:       title,
		Slug:        slugify(title),
		Description: strings.TrimSpace(description),
	})
}

// Delete removes an owned album; admins may delete any.
func (s *Service) Delete(ctx context.Context, actor *identity.Actor, id int64) error {
	album, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.HasEffectiveRole(identity.RoleAdmin) && album.OwnerID != actor.EffectiveUserID() {
		return shared.ErrNotAllowed
	}
	return s.repo.Delete(ctx, id)
}
