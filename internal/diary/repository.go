package diary

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capria-app/capria/internal/shared"
)

// RepositoryPort defines persistence for diary entries. Every method is
// owner-scoped; there is no unscoped read path at all.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]Entry, error)
	GetOwned(ctx context.Context, ownerID, id int64) (*Entry, error)
	Create(ctx context.Context, entry Entry) (*Entry, error)
	Update(ctx context.Context, entry Entry) (*Entry, error)
	DeleteOwned(ctx context.Context, ownerID, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, owner_id, title, body, mood, entry_date, created_at, updated_at`

// ListByOwner returns the owner's entries, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM diary_entries WHERE owner_id = $1 ORDER BY entry_date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := scanEntry(rows, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetOwned fetches one entry if it belongs to the owner.
func (r *Repository) GetOwned(ctx context.Context, ownerID, id int64) (*Entry, error) {
	var entry Entry
	err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM diary_entries WHERE id = $1 AND owner_id = $2`, id, ownerID), &entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create inserts an entry.
func (r *Repository) Create(ctx context.Context, entry Entry) (*Entry, error) {
	err := scanEntry(r.pool.QueryRow(ctx, `INSERT INTO diary_entries (owner_id, title, body, mood, entry_date)
VALUES ($1, $2, $3, $4, $5) RETURNING `+entryColumns,
		entry.OwnerID, entry.Title, entry.Body, entry.Mood, entry.EntryDate), &entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update rewrites an owned entry.
func (r *Repository) Update(ctx context.Context, entry Entry) (*Entry, error) {
	err := scanEntry(r.pool.QueryRow(ctx, `UPDATE diary_entries SET title = $3, body = $4, mood = $5, updated_at = NOW()
WHERE id = $1 AND owner_id = $2 RETURNING `+entryColumns,
		entry.ID, entry.OwnerID, entry.Title, entry.Body, entry.Mood), &entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// DeleteOwned removes an owned entry.
func (r *Repository) DeleteOwned(ctx context.Context, ownerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM diary_entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row, entry *Entry) error {
	return row.Scan(&entry.ID, &entry.OwnerID, &entry.Title, &entry.Body, &entry.Mood, &entry.EntryDate, &entry.CreatedAt, &entry.UpdatedAt)
}

var _ RepositoryPort = (*Repository)(nil)
