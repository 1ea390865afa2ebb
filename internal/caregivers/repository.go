package caregivers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capria-app/capria/internal/shared"
)

// RepositoryPort defines persistence for caregiver relationships.
type RepositoryPort interface {
	ListOwnedBy(ctx context.Context, professionalID int64) ([]Relationship, error)
	ListByCaregiverEmail(ctx context.Context, email string) ([]Relationship, error)
	Get(ctx context.Context, id int64) (*Relationship, error)
	Create(ctx context.Context, rel Relationship) (*Relationship, error)
	Update(ctx context.Context, rel Relationship) (*Relationship, error)
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

const relColumns = `id, client_name, caregiver_email, created_by, created_at, updated_at`

// ListOwnedBy returns relationships created by the given professional.
func (r *Repository) ListOwnedBy(ctx context.Context, professionalID int64) ([]Relationship, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+relColumns+` FROM caregiver_relationships WHERE created_by = $1 ORDER BY id`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByCaregiverEmail returns relationships where the given email is the
// registered caregiver contact.
func (r *Repository) ListByCaregiverEmail(ctx context.Context, email string) ([]Relationship, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+relColumns+` FROM caregiver_relationships WHERE lower(caregiver_email) = lower($1) ORDER BY id`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Get fetches one relationship.
func (r *Repository) Get(ctx context.Context, id int64) (*Relationship, error) {
	var rel Relationship
	err := r.pool.QueryRow(ctx, `SELECT `+relColumns+` FROM caregiver_relationships WHERE id = $1`, id).
		Scan(&rel.ID, &rel.ClientName, &rel.CaregiverEmail, &rel.CreatedBy, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rel, nil
}

// Create inserts a relationship.
func (r *Repository) Create(ctx context.Context, rel Relationship) (*Relationship, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO caregiver_relationships (client_name, caregiver_email, created_by)
VALUES ($1, $2, $3) RETURNING `+relColumns,
		rel.ClientName, rel.CaregiverEmail, rel.CreatedBy).
		Scan(&rel.ID, &rel.ClientName, &rel.CaregiverEmail, &rel.CreatedBy, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Update rewrites the editable fields of a relationship.
func (r *Repository) Update(ctx context.Context, rel Relationship) (*Relationship, error) {
	err := r.pool.QueryRow(ctx, `UPDATE caregiver_relationships SET client_name = $2, caregiver_email = $3, updated_at = NOW()
WHERE id = $1 RETURNING `+relColumns, rel.ID, rel.ClientName, rel.CaregiverEmail).
		Scan(&rel.ID, &rel.ClientName, &rel.CaregiverEmail, &rel.CreatedBy, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rel, nil
}

// Delete removes a relationship.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM caregiver_relationships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Relationship, error) {
	var rels []Relationship
	for rows.Next() {
		var rel Relationship
		if err := rows.Scan(&rel.ID, &rel.ClientName, &rel.CaregiverEmail, &rel.CreatedBy, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
