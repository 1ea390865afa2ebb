package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/shared"
	_ "github.com/capria-app/capria/testing"
)

type stubIdentityRepo struct {
	principal    identity.Principal
	profile      identity.Profile
	principalErr error
	roleNames    []string
	rolesErr     error
}

func (s *stubIdentityRepo) GetPrincipal(ctx context.Context, userID int64) (identity.Principal, identity.Profile, error) {
	if s.principalErr != nil {
		return identity.Principal{}, identity.Profile{}, s.principalErr
	}
	return s.principal, s.profile, nil
}

func (s *stubIdentityRepo) ListRoleNames(ctx context.Context, userID int64) ([]string, error) {
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	return s.roleNames, nil
}

func TestResolveHappyPath(t *testing.T) {
	repo := &stubIdentityRepo{
		principal: identity.Principal{ID: 5, Email: "editor@capria.local"},
		profile:   identity.Profile{DisplayName: "Edna"},
		roleNames: []string{"editor", "reader"},
	}
	resolver := identity.NewResolver(repo, nil)

	snap, err := resolver.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.Principal.ID)
	assert.True(t, snap.HasRole(identity.RoleEditor))
	assert.True(t, snap.HasRole(identity.RoleReader))
	assert.False(t, snap.IsAdmin())
}

func TestResolvePrincipalFailureIsUnauthenticated(t *testing.T) {
	repo := &stubIdentityRepo{principalErr: shared.ErrNotFound}
	resolver := identity.NewResolver(repo, nil)

	snap, err := resolver.Resolve(context.Background(), 9)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestResolveRoleFailureFailsClosed(t *testing.T) {
	repo := &stubIdentityRepo{
		principal: identity.Principal{ID: 5, Email: "editor@capria.local"},
		rolesErr:  errors.New("connection reset"),
	}
	resolver := identity.NewResolver(repo, nil)

	snap, err := resolver.Resolve(context.Background(), 5)
	require.NoError(t, err, "a role fetch failure must not unauthenticate the user")
	require.NotNil(t, snap)
	assert.Empty(t, snap.Roles)
	assert.False(t, snap.HasRole(identity.RoleReader), "role checks must deny until roles load")
}

func TestResolveUnknownRolePreserved(t *testing.T) {
	repo := &stubIdentityRepo{
		principal: identity.Principal{ID: 5},
		roleNames: []string{"reader", "legacy_supervisor"},
	}
	resolver := identity.NewResolver(repo, nil)

	snap, err := resolver.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, snap.Roles, 2)
	assert.True(t, snap.HasRole(identity.RoleReader))
	assert.False(t, snap.HasRole(identity.RoleAdmin))
}

func TestResolveZeroUserID(t *testing.T) {
	resolver := identity.NewResolver(&stubIdentityRepo{}, nil)
	snap, err := resolver.Resolve(context.Background(), 0)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
