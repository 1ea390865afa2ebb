package permissions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/permissions"
	_ "github.com/capria-app/capria/testing"
)

type mockRuleRepo struct {
	canCreate    bool
	canCreateErr error
	hasAccess    bool
	hasAccessErr error
	linkCount    int
	linkErr      error

	ruleCalls int
}

func (m *mockRuleRepo) CanCreateActivities(ctx context.Context, userID int64) (bool, error) {
	m.ruleCalls++
	return m.canCreate, m.canCreateErr
}

func (m *mockRuleRepo) HasAppAccess(ctx context.Context, userID int64) (bool, error) {
	m.ruleCalls++
	return m.hasAccess, m.hasAccessErr
}

func (m *mockRuleRepo) CountCaregiverLinks(ctx context.Context, email string) (int, error) {
	return m.linkCount, m.linkErr
}

func actorWith(roles ...identity.Role) *identity.Actor {
	return &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: 10, Email: "user@capria.local"},
			Roles:     roles,
		},
	}
}

func TestUnauthenticatedDenied(t *testing.T) {
	repo := &mockRuleRepo{canCreate: true}
	ev := permissions.NewEvaluator(repo, nil, nil)

	d := ev.CanCreateActivities(context.Background(), &identity.Actor{})
	assert.Equal(t, permissions.OutcomeDenied, d.Outcome)
	assert.False(t, d.Allowed())
	assert.True(t, d.Terminal())
	assert.Zero(t, repo.ruleCalls, "anonymous callers never reach the rule")
}

func TestAdminShortcut(t *testing.T) {
	repo := &mockRuleRepo{canCreate: false}
	ev := permissions.NewEvaluator(repo, nil, nil)

	d := ev.CanCreateActivities(context.Background(), actorWith(identity.RoleAdmin))
	assert.True(t, d.Allowed())
	assert.Zero(t, repo.ruleCalls, "admins are granted without consulting the rule")
}

func TestRuleVerdictRelayed(t *testing.T) {
	repo := &mockRuleRepo{canCreate: true, hasAccess: false}
	ev := permissions.NewEvaluator(repo, nil, nil)
	actor := actorWith(identity.RoleEditor)

	assert.True(t, ev.CanCreateActivities(context.Background(), actor).Allowed())
	assert.False(t, ev.HasAppAccess(context.Background(), actor).Allowed())
	assert.Equal(t, 2, repo.ruleCalls)
}

func TestRuleErrorResolvesToErrored(t *testing.T) {
	boom := errors.New("rpc unavailable")
	repo := &mockRuleRepo{canCreateErr: boom}
	ev := permissions.NewEvaluator(repo, nil, nil)

	d := ev.CanCreateActivities(context.Background(), actorWith(identity.RoleEditor))
	assert.Equal(t, permissions.OutcomeErrored, d.Outcome)
	assert.False(t, d.Allowed(), "errored must behave exactly like denied")
	assert.True(t, d.Terminal(), "an errored check is finished, not pending")
	assert.ErrorIs(t, d.Err, boom)
}

func TestCaregiversAccessByRole(t *testing.T) {
	repo := &mockRuleRepo{linkCount: 0}
	ev := permissions.NewEvaluator(repo, nil, nil)

	d := ev.HasCaregiversAccess(context.Background(), actorWith(identity.RoleProfessional))
	assert.True(t, d.Allowed())
}

func TestCaregiversAccessByRelationship(t *testing.T) {
	repo := &mockRuleRepo{linkCount: 2}
	ev := permissions.NewEvaluator(repo, nil, nil)

	d := ev.HasCaregiversAccess(context.Background(), actorWith(identity.RoleReader))
	assert.True(t, d.Allowed(), "a caregiver relationship grants access without the role")

	repo.linkCount = 0
	d = ev.HasCaregiversAccess(context.Background(), actorWith(identity.RoleReader))
	assert.False(t, d.Allowed())
}

func TestCaregiversAccessErrorFailsClosed(t *testing.T) {
	repo := &mockRuleRepo{linkErr: errors.New("timeout")}
	ev := permissions.NewEvaluator(repo, nil, nil)

	d := ev.HasCaregiversAccess(context.Background(), actorWith(identity.RoleReader))
	assert.Equal(t, permissions.OutcomeErrored, d.Outcome)
	assert.False(t, d.Allowed())
}

func TestCaregiversAccessUsesEffectiveIdentity(t *testing.T) {
	repo := &mockRuleRepo{}
	ev := permissions.NewEvaluator(repo, nil, nil)

	// An impersonating admin holds only the impersonated user's roles.
	actor := actorWith(identity.RoleAdmin)
	actor.Impersonation = identity.State{
		Active:             true,
		OriginalUserID:     10,
		ImpersonatedUserID: 42,
		ImpersonatedEmail:  "pro@capria.local",
		ImpersonatedRoles:  []identity.Role{identity.RoleProfessional},
		Epoch:              1,
	}

	d := ev.HasCaregiversAccess(context.Background(), actor)
	assert.True(t, d.Allowed(), "the impersonated professional role must drive the check")
	assert.Equal(t, int64(1), d.Epoch)
}

func TestDecisionStaleness(t *testing.T) {
	repo := &mockRuleRepo{canCreate: true}
	ev := permissions.NewEvaluator(repo, nil, nil)

	actor := actorWith(identity.RoleEditor)
	d := ev.CanCreateActivities(context.Background(), actor)
	assert.False(t, d.StaleFor(actor.Epoch()))

	// An impersonation start or stop bumps the epoch; the in-flight
	// decision must now be discarded.
	actor.Impersonation.Epoch++
	assert.True(t, d.StaleFor(actor.Epoch()))
}

func TestAccessibleItems(t *testing.T) {
	items := []string{"a", "b"}

	assert.Equal(t, items, permissions.AccessibleItems(actorWith(identity.RoleReader), items))
	assert.Equal(t, items, permissions.AccessibleItems(actorWith(identity.RoleAdmin), items))
	assert.Nil(t, permissions.AccessibleItems(&identity.Actor{}, items))
}
