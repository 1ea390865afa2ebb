package caregivers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/caregivers"
	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/shared"
	_ "github.com/capria-app/capria/testing"
)

type mockRelRepo struct {
	rels   map[int64]caregivers.Relationship
	nextID int64
}

func newMockRelRepo() *mockRelRepo {
	return &mockRelRepo{rels: map[int64]caregivers.Relationship{}, nextID: 1}
}

func (m *mockRelRepo) ListOwnedBy(ctx context.Context, professionalID int64) ([]caregivers.Relationship, error) {
	var out []caregivers.Relationship
	for _, rel := range m.rels {
		if rel.CreatedBy == professionalID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *mockRelRepo) ListByCaregiverEmail(ctx context.Context, email string) ([]caregivers.Relationship, error) {
	var out []caregivers.Relationship
	for _, rel := range m.rels {
		if strings.EqualFold(rel.CaregiverEmail, email) {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *mockRelRepo) Get(ctx context.Context, id int64) (*caregivers.Relationship, error) {
	rel, ok := m.rels[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rel, nil
}

func (m *mockRelRepo) Create(ctx context.Context, rel caregivers.Relationship) (*caregivers.Relationship, error) {
	rel.ID = m.nextID
	m.nextID++
	m.rels[rel.ID] = rel
	return &rel, nil
}

func (m *mockRelRepo) Update(ctx context.Context, rel caregivers.Relationship) (*caregivers.Relationship, error) {
	m.rels[rel.ID] = rel
	return &rel, nil
}

func (m *mockRelRepo) Delete(ctx context.Context, id int64) error {
	delete(m.rels, id)
	return nil
}

func actorWith(id int64, email string, roles ...identity.Role) *identity.Actor {
	return &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: id, Email: email},
			Roles:     roles,
		},
	}
}

func TestCreateRequiresProfessional(t *testing.T) {
	repo := newMockRelRepo()
	service := caregivers.NewService(repo, nil, nil)
	reader := actorWith(5, "reader@capria.local", identity.RoleReader)

	_, err := service.Create(context.Background(), reader, "Client", "care@capria.local")
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
	assert.Empty(t, repo.rels)
}

func TestListScopedByRole(t *testing.T) {
	repo := newMockRelRepo()
	service := caregivers.NewService(repo, nil, nil)
	pro := actorWith(3, "pro@capria.local", identity.RoleProfessional)

	_, err := service.Create(context.Background(), pro, "Rita", "rita-care@capria.local")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), pro, "Tom", "tom-care@capria.local")
	require.NoError(t, err)

	owned, err := service.ListFor(context.Background(), pro)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	// A caregiver sees only links naming their email.
	caregiver := actorWith(9, "rita-care@capria.local", identity.RoleReader)
	visible, err := service.ListFor(context.Background(), caregiver)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Rita", visible[0].ClientName)
}

func TestManageOwnershipRule(t *testing.T) {
	repo := newMockRelRepo()
	service := caregivers.NewService(repo, nil, nil)
	owner := actorWith(3, "pro@capria.local", identity.RoleProfessional)
	other := actorWith(4, "other@capria.local", identity.RoleProfessional)

	rel, err := service.Create(context.Background(), owner, "Rita", "care@capria.local")
	require.NoError(t, err)

	_, err = service.Update(context.Background(), other, rel.ID, "Hijacked", "other@x")
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
	assert.ErrorIs(t, service.Delete(context.Background(), other, rel.ID), shared.ErrNotAllowed)

	updated, err := service.Update(context.Background(), owner, rel.ID, "Rita R.", "care@capria.local")
	require.NoError(t, err)
	assert.Equal(t, "Rita R.", updated.ClientName)

	admin := actorWith(1, "admin@capria.local", identity.RoleAdmin)
	assert.NoError(t, service.Delete(context.Background(), admin, rel.ID))
}

func TestAuditCarriesRealActor(t *testing.T) {
	repo := newMockRelRepo()
	audit := &recordedAudit{}
	service := caregivers.NewService(repo, audit, nil)

	// Admin impersonating a professional: rows belong to the professional,
	// audit names the admin.
	actor := actorWith(1, "admin@capria.local", identity.RoleAdmin)
	actor.Impersonation = identity.State{
		Active:             true,
		OriginalUserID:     1,
		ImpersonatedUserID: 3,
		ImpersonatedEmail:  "pro@capria.local",
		ImpersonatedRoles:  []identity.Role{identity.RoleProfessional},
		Epoch:              1,
	}

	rel, err := service.Create(context.Background(), actor, "Rita", "care@capria.local")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rel.CreatedBy)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, shared.AuditActionCaregiverLinked, audit.logs[0].Action)
	assert.Equal(t, int64(1), audit.logs[0].ActorID)
}

type recordedAudit struct {
	logs []shared.AuditLog
}

func (r *recordedAudit) Record(ctx context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}
