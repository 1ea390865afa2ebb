package activities

import (
	"context"
	"strings"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/permissions"
	"github.com/capria-app/capria/internal/shared"
)

// Service handles activity business logic. Creation is gated by the
// permission evaluator; listings are scoped by the effective identity.
type Service struct {
	repo      RepositoryPort
	evaluator *permissions.Evaluator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, evaluator *permissions.Evaluator) *Service {
	return &Service{repo: repo, evaluator: evaluator}
}

// ListFor returns the activities visible to the actor: everything for
// admins, owned rows otherwise.
func (s *Service) ListFor(ctx context.Context, actor *identity.Actor) ([]Activity, error) {
	if actor.HasEffectiveRole(identity.RoleAdmin) {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, actor.EffectiveUserID())
}

// Create inserts an activity owned by the effective identity, provided the
// evaluator grants the capability.
func (s *Service) Create(ctx context.Context, actor *identity.Actor, title, kind, description string) (*Activity, error) {
	decision := s.evaluator.CanCreateActivities(ctx, actor)
	if decision.StaleFor(actor.Epoch()) || !decision.Allowed() {
		return nil, shared.ErrNotAllowed
	}
	title = strings.TrimSpace(title)
	if title == "" || !ValidKind(kind) {
		return nil, shared.ErrNotAllowed
	}
	return s.repo.Create(ctx, Activity{
		OwnerID:     actor.EffectiveUserID(),
		Title:       title,
		Kind:        kind,
		Description: strings.TrimSpace(description),
	})
}

// Delete removes an owned activity; admins may delete any.
func (s *Service) Delete(ctx context.Context, actor *identity.Actor, id int64) error {
	act, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.HasEffectiveRole(identity.RoleAdmin) && act.OwnerID != actor.EffectiveUserID() {
		return shared.ErrNotAllowed
	}
	return s.repo.Delete(ctx, id)
}
