package permissions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitehem/sitehem/internal/shared"
)

// Repository defines persistence operations for permissions.
type Repository interface {
	List(ctx context.Context) ([]Permission, error)
	Get(ctx context.Context, id int64) (Permission, error)
	GetByName(ctx context.Context, name string) (Permission, error)
	Create(ctx context.Context, perm Permission) (Permission, error)
	Update(ctx context.Context, perm Permission) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns all permissions ordered by group then name.
func (r *PGRepository) List(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, group_label, created_at, updated_at FROM permissions ORDER BY group_label, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Group, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Get fetches a permission by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Permission, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT id, name, description, group_label, created_at, updated_at FROM permissions WHERE id = $1`, id))
}

// GetByName fetches a permission by its unique name.
func (r *PGRepository) GetByName(ctx context.Context, name string) (Permission, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT id, name, description, group_label, created_at, updated_at FROM permissions WHERE name = $1`, name))
}

// Create inserts a new permission. The unique constraint on name is the
// authoritative duplicate guard; a violation maps to ErrConflict.
func (r *PGRepository) Create(ctx context.Context, perm Permission) (Permission, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (name, description, group_label, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		perm.Name, perm.Description, perm.Group, now).Scan(&perm.ID)
	if err != nil {
		return Permission{}, mapConstraintError(err)
	}
	perm.CreatedAt = now
	perm.UpdatedAt = now
	return perm, nil
}

// Update rewrites a permission record.
func (r *PGRepository) Update(ctx context.Context, perm Permission) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE permissions SET name = $1, description = $2, group_label = $3, updated_at = $4 WHERE id = $5`,
		perm.Name, perm.Description, perm.Group, time.Now().UTC(), perm.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a permission; role_permissions rows cascade at the store.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) scan(row pgx.Row) (Permission, error) {
	var p Permission
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Group, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
