package roles

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/shared"
)

// Service orchestrates role catalog reads and grant changes. The catalog
// is a closed set: grants only ever reference roles the application
// understands, so adding a role is a code change, not a data change.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ListRoles returns the catalog.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// ListUserGrants returns the grants held by a user.
func (s *Service) ListUserGrants(ctx context.Context, userID int64) ([]Grant, error) {
	return s.repo.ListUserGrants(ctx, userID)
}

// AssignRole grants a known role to a user and audits the change.
func (s *Service) AssignRole(ctx context.Context, actorID, userID int64, roleName string) error {
	if _, known := identity.ParseRole(roleName); !known {
		return shared.ErrNotFound
	}
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	if err := s.repo.AssignRole(ctx, userID, role.ID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, shared.AuditActionRoleAssigned, userID, roleName)
	return nil
}

// RemoveRole revokes a role grant and audits the change.
func (s *Service) RemoveRole(ctx context.Context, actorID, userID int64, roleName string) error {
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveRole(ctx, userID, role.ID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, shared.AuditActionRoleRemoved, userID, roleName)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, roleName string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"role": roleName},
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit role change", slog.String("action", action), slog.Any("error", err))
	}
}
