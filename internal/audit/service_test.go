package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/audit"
	_ "github.com/capria-app/capria/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTrailRepo struct {
	entries []audit.Entry

	lastLimit  int
	lastOffset int
	lastFilter audit.Filter
}

func (m *mockTrailRepo) List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Entry, error) {
	m.lastFilter = filter
	m.lastLimit = limit
	m.lastOffset = offset
	if offset >= len(m.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.entries) {
		end = len(m.entries)
	}
	return m.entries[offset:end], nil
}

func (m *mockTrailRepo) Count(ctx context.Context, filter audit.Filter) (int, error) {
	return len(m.entries), nil
}

func (m *mockTrailRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []audit.Entry
	var removed int64
	for _, e := range m.entries {
		if e.OccurredAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

func TestTimelinePagination(t *testing.T) {
	repo := &mockTrailRepo{}
	for i := 0; i < 120; i++ {
		repo.entries = append(repo.entries, audit.Entry{ID: int64(i + 1), Action: "auth.login"})
	}
	service := audit.NewService(testLogger(), repo)

	entries, pagination, err := service.Timeline(context.Background(), audit.Filter{}, 2, 50)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
	assert.Equal(t, 50, repo.lastOffset)
	assert.Equal(t, 120, pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &mockTrailRepo{}
	service := audit.NewService(testLogger(), repo)

	_, pagination, err := service.Timeline(context.Background(), audit.Filter{}, 0, 10000)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastLimit)
	assert.Equal(t, 1, pagination.Page)
}

func TestTrimRemovesOldEntries(t *testing.T) {
	now := time.Now()
	repo := &mockTrailRepo{entries: []audit.Entry{
		{ID: 1, OccurredAt: now.Add(-100 * 24 * time.Hour)},
		{ID: 2, OccurredAt: now.Add(-time.Hour)},
	}}
	service := audit.NewService(testLogger(), repo)

	removed, err := service.Trim(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, repo.entries, 1)
}
