package permissions

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository against PostgreSQL. The rule
// functions are defined in scripts/schema.sql and owned by the database:
// the server-enforced row policies there are the real security boundary,
// the evaluator's verdicts are for UX.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CanCreateActivities invokes the app_can_create_activities rule function.
func (r *PGRepository) CanCreateActivities(ctx context.Context, userID int64) (bool, error) {
	var allowed bool
	err := r.pool.QueryRow(ctx, `SELECT app_can_create_activities($1)`, userID).Scan(&allowed)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// HasAppAccess invokes the app_has_app_access rule function.
func (r *PGRepository) HasAppAccess(ctx context.Context, userID int64) (bool, error) {
	var allowed bool
	err := r.pool.QueryRow(ctx, `SELECT app_has_app_access($1)`, userID).Scan(&allowed)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// CountCaregiverLinks counts caregiver relationships registered for the
// given contact email.
func (r *PGRepository) CountCaregiverLinks(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM caregiver_relationships WHERE lower(caregiver_email) = lower($1)`, email).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

var _ Repository = (*PGRepository)(nil)
