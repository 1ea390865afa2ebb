package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is a single row from the audit trail.
type Entry struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actor_id"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	Meta       map[string]any `json:"meta"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Filter narrows a timeline query. Zero values mean "no filter".
type Filter struct {
	ActorID int64
	Action  string
	Entity  string
	Since   time.Time
}

// Repository reads the audit trail.
type Repository interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error)
	Count(ctx context.Context, filter Filter) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PGRepository is the Postgres implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository returns a new PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

func buildWhere(filter Filter) (string, []any) {
	where := "WHERE 1=1"
	args := []any{}
	if filter.ActorID > 0 {
		args = append(args, filter.ActorID)
		where += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		where += fmt.Sprintf(" AND entity = $%d", len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		where += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	return where, args
}

// List returns timeline entries, newest first.
func (r *PGRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	where, args := buildWhere(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT id, actor_id, action, entity, entity_id, meta, occurred_at
        FROM audit_logs %s
        ORDER BY occurred_at DESC, id DESC
        LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.Meta, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of entries matching the filter.
func (r *PGRepository) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs "+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return total, nil
}

// DeleteOlderThan trims entries past the retention window.
func (r *PGRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM audit_logs WHERE occurred_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("trim audit logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
