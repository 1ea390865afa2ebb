package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/capria-app/capria/internal/shared"
)

// Repository defines the lookups the resolver needs.
type Repository interface {
	GetPrincipal(ctx context.Context, userID int64) (Principal, Profile, error)
	ListRoleNames(ctx context.Context, userID int64) ([]string, error)
}

// Resolver loads the authenticated principal, its profile and granted roles
// into a consistent snapshot.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve produces a snapshot for the given user ID. A failed principal
// lookup yields (nil, err) and must be treated as unauthenticated by the
// caller, not as a transient condition to retry. A failed role lookup is
// absorbed: the snapshot comes back with no roles, so every role check
// fails closed.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (*Snapshot, error) {
	if userID == 0 {
		return nil, shared.ErrNotFound
	}
	principal, profile, err := r.repo.GetPrincipal(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && r.logger != nil {
			r.logger.Error("resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, err
	}

	snapshot := &Snapshot{Principal: principal, Profile: profile}

	names, err := r.repo.ListRoleNames(ctx, userID)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("resolve roles", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return snapshot, nil
	}
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		role, known := ParseRole(name)
		if !known && r.logger != nil {
			r.logger.Warn("unknown role in store", slog.String("role", name), slog.Int64("user_id", userID))
		}
		roles = append(roles, role)
	}
	snapshot.Roles = roles
	return snapshot, nil
}
