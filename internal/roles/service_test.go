package roles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/roles"
	"github.com/capria-app/capria/internal/shared"
	_ "github.com/capria-app/capria/testing"
)

type mockRoleRepo struct {
	catalog map[string]roles.Role
	grants  map[int64][]int64
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{
		catalog: map[string]roles.Role{
			"admin":        {ID: 1, Name: "admin"},
			"editor":       {ID: 2, Name: "editor"},
			"reader":       {ID: 3, Name: "reader"},
			"professional": {ID: 4, Name: "professional"},
		},
		grants: map[int64][]int64{},
	}
}

func (m *mockRoleRepo) ListRoles(ctx context.Context) ([]roles.Role, error) {
	var out []roles.Role
	for _, r := range m.catalog {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleRepo) GetRoleByName(ctx context.Context, name string) (*roles.Role, error) {
	r, ok := m.catalog[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &r, nil
}

func (m *mockRoleRepo) ListUserGrants(ctx context.Context, userID int64) ([]roles.Grant, error) {
	var out []roles.Grant
	for _, roleID := range m.grants[userID] {
		out = append(out, roles.Grant{UserID: userID, RoleID: roleID})
	}
	return out, nil
}

func (m *mockRoleRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	m.grants[userID] = append(m.grants[userID], roleID)
	return nil
}

func (m *mockRoleRepo) RemoveRole(ctx context.Context, userID, roleID int64) error {
	kept := m.grants[userID][:0]
	for _, id := range m.grants[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.grants[userID] = kept
	return nil
}

type auditSink struct {
	logs []shared.AuditLog
}

func (a *auditSink) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestAssignKnownRole(t *testing.T) {
	repo := newMockRoleRepo()
	audit := &auditSink{}
	service := roles.NewService(repo, audit, nil)

	require.NoError(t, service.AssignRole(context.Background(), 1, 42, "editor"))
	grants, err := service.ListUserGrants(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, shared.AuditActionRoleAssigned, audit.logs[0].Action)
	assert.Equal(t, "editor", audit.logs[0].Meta["role"])
}

func TestAssignUnknownRoleRejected(t *testing.T) {
	repo := newMockRoleRepo()
	// Even a catalog row outside the closed set must not be grantable.
	repo.catalog["superuser"] = roles.Role{ID: 99, Name: "superuser"}
	service := roles.NewService(repo, nil, nil)

	err := service.AssignRole(context.Background(), 1, 42, "superuser")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.grants[42])
}

func TestRemoveRole(t *testing.T) {
	repo := newMockRoleRepo()
	audit := &auditSink{}
	service := roles.NewService(repo, audit, nil)

	require.NoError(t, service.AssignRole(context.Background(), 1, 42, "reader"))
	require.NoError(t, service.RemoveRole(context.Background(), 1, 42, "reader"))

	grants, err := service.ListUserGrants(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, grants)
	assert.Len(t, audit.logs, 2)
}
