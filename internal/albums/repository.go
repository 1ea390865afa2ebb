package albums

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capria-app/capria/internal/shared"
)

// RepositoryPort defines persistence for albums.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]Album, error)
	ListAll(ctx context.Context) ([]Album, error)
	Get(ctx context.Context, id int64) (*Album, error)
	Create(ctx context.Context, album Album) (*Album, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const albumColumns = `id, owner_id, title, slug, description, created_at, updated_at`

// ListByOwner scopes rows to one owner. This WHERE clause is the actual
// access boundary for non-admin listings.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Album, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+albumColumns+` FROM albums WHERE owner_id = $1 ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListAll returns every album. Admin listings only.
func (r *Repository) ListAll(ctx context.Context) ([]Album, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Get fetches one album.
func (r *Repository) Get(ctx context.Context, id int64) (*Album, error) {
	var album Album
	err := r.pool.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, id).
		Scan(&album.ID, &album.OwnerID, &album.Title, &album.Slug, &album.Description, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &album, nil
}

// Create inserts an album.
func (r *Repository) Create(ctx context.Context, album Album) (*Album, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO albums (owner_id, title, slug, description)
VALUES ($1, $2, $3, $4) RETURNING `+albumColumns,
		album.OwnerID, album.Title, album.Slug, album.Description).
		Scan(&album.ID, &album.OwnerID, &album.Title, &album.Slug, &album.Description, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// Delete removes an album.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Album, error) {
	var list []Album
	for rows.Next() {
		var album Album
		if err := rows.Scan(&album.ID, &album.OwnerID, &album.Title, &album.Slug, &album.Description, &album.CreatedAt, &album.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, album)
	}
	return list, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
