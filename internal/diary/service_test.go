package diary_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/diary"
	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/shared"
	_ "github.com/capria-app/capria/testing"
)

type mockDiaryRepo struct {
	nextID  int64
	entries map[int64]diary.Entry
}

func newMockDiaryRepo() *mockDiaryRepo {
	return &mockDiaryRepo{entries: map[int64]diary.Entry{}}
}

func (m *mockDiaryRepo) ListByOwner(ctx context.Context, ownerID int64) ([]diary.Entry, error) {
	var out []diary.Entry
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockDiaryRepo) GetOwned(ctx context.Context, ownerID, id int64) (*diary.Entry, error) {
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (m *mockDiaryRepo) Create(ctx context.Context, entry diary.Entry) (*diary.Entry, error) {
	m.nextID++
	entry.ID = m.nextID
	m.entries[entry.ID] = entry
	return &entry, nil
}

func (m *mockDiaryRepo) Update(ctx context.Context, entry diary.Entry) (*diary.Entry, error) {
	existing, ok := m.entries[entry.ID]
	if !ok || existing.OwnerID != entry.OwnerID {
		return nil, shared.ErrNotFound
	}
	existing.Title = entry.Title
	existing.Body = entry.Body
	existing.Mood = entry.Mood
	m.entries[entry.ID] = existing
	return &existing, nil
}

func (m *mockDiaryRepo) DeleteOwned(ctx context.Context, ownerID, id int64) error {
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func readerActor(id int64) *identity.Actor {
	return &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: id, Email: "reader@capria.local"},
			Roles:     []identity.Role{identity.RoleReader},
		},
	}
}

func TestDiaryScopedToOwner(t *testing.T) {
	repo := newMockDiaryRepo()
	service := diary.NewService(repo)

	mine, err := service.Create(context.Background(), readerActor(5), "Morning walk", "Sunny day", "calm", time.Time{})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), readerActor(9), "Private", "", "", time.Time{})
	require.NoError(t, err)

	entries, err := service.List(context.Background(), readerActor(5))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mine.ID, entries[0].ID)

	_, err = service.Get(context.Background(), readerActor(5), 2)
	assert.ErrorIs(t, err, shared.ErrNotFound, "other users' entries are invisible, not forbidden")
}

func TestDiaryCreateDefaultsEntryDate(t *testing.T) {
	service := diary.NewService(newMockDiaryRepo())

	entry, err := service.Create(context.Background(), readerActor(5), "Untitled day", "", "", time.Time{})
	require.NoError(t, err)
	assert.False(t, entry.EntryDate.IsZero())

	_, err = service.Create(context.Background(), readerActor(5), "   ", "", "", time.Time{})
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
}

func TestDiaryFollowsEffectiveIdentity(t *testing.T) {
	repo := newMockDiaryRepo()
	service := diary.NewService(repo)

	admin := &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: 1, Email: "admin@capria.local"},
			Roles:     []identity.Role{identity.RoleAdmin},
		},
		Impersonation: identity.State{
			Active:             true,
			OriginalUserID:     1,
			ImpersonatedUserID: 42,
			ImpersonatedRoles:  []identity.Role{identity.RoleReader},
			Epoch:              1,
		},
	}

	entry, err := service.Create(context.Background(), admin, "Support note", "", "", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), entry.OwnerID)

	entries, err := service.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "impersonating admin reads the target's diary, not their own")
}
