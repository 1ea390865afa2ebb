package activities

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capria-app/capria/internal/shared"
)

// RepositoryPort defines persistence for activities.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]Activity, error)
	ListAll(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, id int64) (*Activity, error)
	Create(ctx context.Context, act Activity) (*Activity, error)
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

const actColumns = `id, owner_id, title, kind, description, created_at, updated_at`

// ListByOwner scopes rows to one owner; this WHERE clause, not any
// client-side filter, is the access boundary.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+actColumns+` FROM activities WHERE owner_id = $1 ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListAll returns every activity. Admin listings only.
func (r *Repository) ListAll(ctx context.Context) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+actColumns+` FROM activities ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Get fetches one activity.
func (r *Repository) Get(ctx context.Context, id int64) (*Activity, error) {
	var act Activity
	err := r.pool.QueryRow(ctx, `SELECT `+actColumns+` FROM activities WHERE id = $1`, id).
		Scan(&act.ID, &act.OwnerID, &act.Title, &act.Kind, &act.Description, &act.CreatedAt, &act.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &act, nil
}

// Create inserts an activity.
func (r *Repository) Create(ctx context.Context, act Activity) (*Activity, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO activities (owner_id, title, kind, description)
VALUES ($1, $2, $3, $4) RETURNING `+actColumns,
		act.OwnerID, act.Title, act.Kind, act.Description).
		Scan(&act.ID, &act.OwnerID, &act.Title, &act.Kind, &act.Description, &act.CreatedAt, &act.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// Delete removes an activity.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Activity, error) {
	var acts []Activity
	for rows.Next() {
		var act Activity
		if err := rows.Scan(&act.ID, &act.OwnerID, &act.Title, &act.Kind, &act.Description, &act.CreatedAt, &act.UpdatedAt); err != nil {
			return nil, err
		}
		acts = append(acts, act)
	}
	return acts, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
