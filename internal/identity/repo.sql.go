package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capria-app/capria/internal/shared"
)

// PGRepository implements Repository against PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetPrincipal loads the principal and profile rows for an active user.
func (r *PGRepository) GetPrincipal(ctx context.Context, userID int64) (Principal, Profile, error) {
	const query = `SELECT id, email, display_name, status, permanent_access, created_at, updated_at
FROM users WHERE id = $1 AND is_active = TRUE`
	var (
		principal Principal
		profile   Profile
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&principal.ID,
		&principal.Email,
		&profile.DisplayName,
		&profile.Status,
		&profile.PermanentAccess,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, Profile{}, shared.ErrNotFound
		}
		return Principal{}, Profile{}, err
	}
	return principal, profile, nil
}

// ListRoleNames returns the role names granted to the user.
func (r *PGRepository) ListRoleNames(ctx context.Context, userID int64) ([]string, error) {
	const query = `SELECT ro.name FROM user_roles ur JOIN roles ro ON ro.id = ur.role_id WHERE ur.user_id = $1 ORDER BY ro.name`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
