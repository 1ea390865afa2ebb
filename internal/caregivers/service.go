package caregivers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/shared"
)

// Service owns the caregiver relationship rules: professionals manage the
// links they created, caregivers may only read links naming their email.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ListFor returns the relationships visible to the actor: owned links for
// professionals, links naming the effective email for everyone else.
func (s *Service) ListFor(ctx context.Context, actor *identity.Actor) ([]Relationship, error) {
	if actor.HasEffectiveRole(identity.RoleProfessional) || actor.HasEffectiveRole(identity.RoleAdmin) {
		return s.repo.ListOwnedBy(ctx, actor.EffectiveUserID())
	}
	return s.repo.ListByCaregiverEmail(ctx, actor.EffectiveEmail())
}

// Create registers a relationship owned by the acting professional.
func (s *Service) Create(ctx context.Context, actor *identity.Actor, clientName, caregiverEmail string) (*Relationship, error) {
	if !actor.HasEffectiveRole(identity.RoleProfessional) && !actor.HasEffectiveRole(identity.RoleAdmin) {
		return nil, shared.ErrNotAllowed
	}
	clientName = strings.TrimSpace(clientName)
	caregiverEmail = strings.TrimSpace(caregiverEmail)
	if clientName == "" || caregiverEmail == "" {
		return nil, shared.ErrNotAllowed
	}
	rel, err := s.repo.Create(ctx, Relationship{
		ClientName:     clientName,
		CaregiverEmail: caregiverEmail,
		CreatedBy:      actor.EffectiveUserID(),
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor.RealUserID(), shared.AuditActionCaregiverLinked, rel)
	return rel, nil
}

// Update edits a relationship. Only the owning professional (or an admin)
// may change it.
func (s *Service) Update(ctx context.Context, actor *identity.Actor, id int64, clientName, caregiverEmail string) (*Relationship, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, existing) {
		return nil, shared.ErrNotAllowed
	}
	existing.ClientName = strings.TrimSpace(clientName)
	existing.CaregiverEmail = strings.TrimSpace(caregiverEmail)
	if existing.ClientName == "" || existing.CaregiverEmail == "" {
		return nil, shared.ErrNotAllowed
	}
	return s.repo.Update(ctx, *existing)
}

// Delete removes a relationship under the same ownership rule.
func (s *Service) Delete(ctx context.Context, actor *identity.Actor, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, existing) {
		return shared.ErrNotAllowed
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor.RealUserID(), shared.AuditActionCaregiverUnlinked, existing)
	return nil
}

func (s *Service) canManage(actor *identity.Actor, rel *Relationship) bool {
	if actor.HasEffectiveRole(identity.RoleAdmin) {
		return true
	}
	return actor.HasEffectiveRole(identity.RoleProfessional) && rel.CreatedBy == actor.EffectiveUserID()
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, rel *Relationship) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "caregiver_relationship",
		EntityID: strconv.FormatInt(rel.ID, 10),
		Meta:     map[string]any{"caregiver_email": rel.CaregiverEmail},
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit caregiver change", slog.String("action", action), slog.Any("error", err))
	}
}
