package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capria-app/capria/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, page, perPage int) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error)
	SetPermanentAccess(ctx context.Context, id int64, enabled bool) error
	SetStatus(ctx context.Context, id int64, status string, active bool) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, display_name, status, permanent_access, is_active, created_at, updated_at`

// ListUsers returns a page of users plus the total count.
func (r *Repository) ListUsers(ctx context.Context, page, perPage int) ([]User, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// GetUser fetches one user.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the owner-editable fields.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET display_name = $2, updated_at = NOW() WHERE id = $1
RETURNING `+userColumns, id, update.DisplayName)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetPermanentAccess toggles the permanent access flag. Admin operation.
func (r *Repository) SetPermanentAccess(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET permanent_access = $2, updated_at = NOW() WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStatus updates account status and the active flag together. Admin operation.
func (r *Repository) SetStatus(ctx context.Context, id int64, status string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET status = $2, is_active = $3, updated_at = NOW() WHERE id = $1`, id, status, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.Status, &user.PermanentAccess, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

var _ RepositoryPort = (*Repository)(nil)
