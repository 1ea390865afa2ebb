package activities_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/activities"
	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/permissions"
	"github.com/capria-app/capria/internal/shared"
	_ "github.com/capria-app/capria/testing"
)

type mockActivityRepo struct {
	items  map[int64]activities.Activity
	nextID int64
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{items: map[int64]activities.Activity{}, nextID: 1}
}

func (m *mockActivityRepo) ListByOwner(ctx context.Context, ownerID int64) ([]activities.Activity, error) {
	var out []activities.Activity
	for _, a := range m.items {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActivityRepo) ListAll(ctx context.Context) ([]activities.Activity, error) {
	var out []activities.Activity
	for _, a := range m.items {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockActivityRepo) Get(ctx context.Context, id int64) (*activities.Activity, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (m *mockActivityRepo) Create(ctx context.Context, act activities.Activity) (*activities.Activity, error) {
	act.ID = m.nextID
	m.nextID++
	m.items[act.ID] = act
	return &act, nil
}

func (m *mockActivityRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type ruleRepo struct {
	canCreate bool
	ruleErr   error
}

func (r *ruleRepo) CanCreateActivities(ctx context.Context, userID int64) (bool, error) {
	return r.canCreate, r.ruleErr
}

func (r *ruleRepo) HasAppAccess(ctx context.Context, userID int64) (bool, error) {
	return true, nil
}

func (r *ruleRepo) CountCaregiverLinks(ctx context.Context, email string) (int, error) {
	return 0, nil
}

func newService(repo *mockActivityRepo, rules *ruleRepo) *activities.Service {
	evaluator := permissions.NewEvaluator(rules, nil, nil)
	return activities.NewService(repo, evaluator)
}

func editorActor(id int64) *identity.Actor {
	return &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: id, Email: "editor@capria.local"},
			Roles:     []identity.Role{identity.RoleEditor},
		},
	}
}

func TestCreateGrantedByRule(t *testing.T) {
	repo := newMockActivityRepo()
	service := newService(repo, &ruleRepo{canCreate: true})

	act, err := service.Create(context.Background(), editorActor(5), "Memory drill", activities.KindSequenceMemory, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), act.OwnerID)
}

func TestCreateDeniedByRule(t *testing.T) {
	repo := newMockActivityRepo()
	service := newService(repo, &ruleRepo{canCreate: false})

	_, err := service.Create(context.Background(), editorActor(5), "Memory drill", activities.KindSequenceMemory, "")
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
	assert.Empty(t, repo.items, "a denied create must not touch storage")
}

func TestCreateRuleErrorDenies(t *testing.T) {
	repo := newMockActivityRepo()
	service := newService(repo, &ruleRepo{ruleErr: errors.New("rule unavailable")})

	_, err := service.Create(context.Background(), editorActor(5), "Memory drill", activities.KindSequenceMemory, "")
	assert.ErrorIs(t, err, shared.ErrNotAllowed, "an errored check behaves like a denial")
	assert.Empty(t, repo.items)
}

func TestCreateValidation(t *testing.T) {
	service := newService(newMockActivityRepo(), &ruleRepo{canCreate: true})

	_, err := service.Create(context.Background(), editorActor(5), "  ", activities.KindWordPuzzle, "")
	assert.ErrorIs(t, err, shared.ErrNotAllowed)

	_, err = service.Create(context.Background(), editorActor(5), "Puzzle", "karaoke", "")
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
}

func TestCreateOwnedByEffectiveIdentity(t *testing.T) {
	repo := newMockActivityRepo()
	service := newService(repo, &ruleRepo{canCreate: true})

	actor := &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: 1, Email: "admin@capria.local"},
			Roles:     []identity.Role{identity.RoleAdmin},
		},
		Impersonation: identity.State{
			Active:             true,
			OriginalUserID:     1,
			ImpersonatedUserID: 42,
			ImpersonatedRoles:  []identity.Role{identity.RoleEditor},
			Epoch:              1,
		},
	}

	act, err := service.Create(context.Background(), actor, "On behalf", activities.KindFreeform, "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), act.OwnerID, "rows created while impersonating belong to the impersonated user")
}

func TestListScopedByRole(t *testing.T) {
	repo := newMockActivityRepo()
	service := newService(repo, &ruleRepo{canCreate: true})

	_, err := service.Create(context.Background(), editorActor(5), "Mine", activities.KindFreeform, "")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), editorActor(6), "Theirs", activities.KindFreeform, "")
	require.NoError(t, err)

	mine, err := service.ListFor(context.Background(), editorActor(5))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	admin := &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: 1},
			Roles:     []identity.Role{identity.RoleAdmin},
		},
	}
	all, err := service.ListFor(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteOwnership(t *testing.T) {
	repo := newMockActivityRepo()
	service := newService(repo, &ruleRepo{canCreate: true})

	act, err := service.Create(context.Background(), editorActor(5), "Mine", activities.KindFreeform, "")
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(context.Background(), editorActor(6), act.ID), shared.ErrNotAllowed)
	assert.NoError(t, service.Delete(context.Background(), editorActor(5), act.ID))
}
