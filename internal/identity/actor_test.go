package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capria-app/capria/internal/identity"
	_ "github.com/capria-app/capria/testing"
)

func adminActor() *identity.Actor {
	return &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: 1, Email: "admin@capria.local"},
			Roles:     []identity.Role{identity.RoleAdmin},
		},
	}
}

func TestHasRoleBeforeRolesLoad(t *testing.T) {
	var snap *identity.Snapshot
	assert.False(t, snap.HasRole(identity.RoleAdmin), "nil snapshot must never grant a role")

	loaded := &identity.Snapshot{Principal: identity.Principal{ID: 7}}
	assert.False(t, loaded.HasRole(identity.RoleReader), "empty role list must deny")
	assert.False(t, loaded.IsAdmin())
}

func TestEffectiveIdentityWithoutImpersonation(t *testing.T) {
	actor := adminActor()

	assert.True(t, actor.Authenticated())
	assert.False(t, actor.IsImpersonating())
	assert.Equal(t, int64(1), actor.EffectiveUserID())
	assert.Equal(t, "admin@capria.local", actor.EffectiveEmail())
	assert.True(t, actor.HasEffectiveRole(identity.RoleAdmin))
}

func TestEffectiveIdentityUnderImpersonation(t *testing.T) {
	actor := adminActor()
	actor.Impersonation = identity.State{
		Active:             true,
		OriginalUserID:     1,
		ImpersonatedUserID: 42,
		ImpersonatedEmail:  "reader@capria.local",
		ImpersonatedRoles:  []identity.Role{identity.RoleReader},
		Epoch:              3,
	}

	assert.True(t, actor.IsImpersonating())
	assert.Equal(t, int64(42), actor.EffectiveUserID())
	assert.Equal(t, "reader@capria.local", actor.EffectiveEmail())
	assert.True(t, actor.HasEffectiveRole(identity.RoleReader))
	assert.False(t, actor.HasEffectiveRole(identity.RoleAdmin), "admin role must not leak through the overlay")

	// The audit identity stays the real one.
	assert.Equal(t, int64(1), actor.RealUserID())
	assert.True(t, actor.IsRealAdmin())
	assert.Equal(t, int64(3), actor.Epoch())
}

func TestAnonymousActor(t *testing.T) {
	var actor *identity.Actor
	assert.False(t, actor.Authenticated())
	assert.Equal(t, int64(0), actor.EffectiveUserID())
	assert.Empty(t, actor.EffectiveEmail())
	assert.Nil(t, actor.EffectiveRoles())
	assert.False(t, actor.IsRealAdmin())

	empty := &identity.Actor{}
	assert.False(t, empty.Authenticated())
	assert.Equal(t, int64(0), empty.EffectiveUserID())
}

func TestWellFormedState(t *testing.T) {
	assert.True(t, identity.State{}.WellFormed(), "inactive zero state is well-formed")
	assert.True(t, identity.State{Active: true, OriginalUserID: 1, ImpersonatedUserID: 2}.WellFormed())
	assert.False(t, identity.State{Active: true, ImpersonatedUserID: 2}.WellFormed())
	assert.False(t, identity.State{Active: true, OriginalUserID: 1}.WellFormed())
}

func TestParseRoleClosedSet(t *testing.T) {
	for _, name := range []string{"admin", "editor", "reader", "professional"} {
		role, ok := identity.ParseRole(name)
		assert.True(t, ok, name)
		assert.True(t, role.Valid())
	}
	_, ok := identity.ParseRole("superuser")
	assert.False(t, ok, "unknown role names must not become roles")
}
