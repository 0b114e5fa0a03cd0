package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/box-office/internal/domain"
)

// OrgRepository defines persistence for sales-organization members. The org
// structure is read-mostly here; assignment mutation belongs to an external
// admin surface this core only observes.
type OrgRepository interface {
	Create(ctx context.Context, user *domain.OrgUser) error
	Update(ctx context.Context, user *domain.OrgUser) error
	GetByID(ctx context.Context, id string) (*domain.OrgUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.OrgUser, error)
	ListAll(ctx context.Context) ([]domain.OrgUser, error)
}

type orgRepository struct {
	pool *pgxpool.Pool
}

// NewOrgRepository returns a Postgres-backed implementation.
func NewOrgRepository(pool *pgxpool.Pool) OrgRepository {
	return &orgRepository{pool: pool}
}

const orgColumns = `id, name, email, password_hash, role, parent_id, status, created_at, updated_at`

func (r *orgRepository) Create(ctx context.Context, user *domain.OrgUser) error {
	const query = `
        INSERT INTO org_users (name, email, password_hash, role, parent_id, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ParentID,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *orgRepository) Update(ctx context.Context, user *domain.OrgUser) error {
	const query = `
        UPDATE org_users SET name=$1, email=$2, password_hash=$3, role=$4, parent_id=$5, status=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ParentID,
		user.Status,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrgUserNotFound
	}
	return nil
}

func (r *orgRepository) GetByID(ctx context.Context, id string) (*domain.OrgUser, error) {
	return r.fetchSingle(ctx, `SELECT `+orgColumns+` FROM org_users WHERE id=$1`, id)
}

func (r *orgRepository) GetByEmail(ctx context.Context, email string) (*domain.OrgUser, error) {
	return r.fetchSingle(ctx, `SELECT `+orgColumns+` FROM org_users WHERE email=$1`, email)
}

func (r *orgRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.OrgUser, error) {
	var user domain.OrgUser
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.ParentID,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrgUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *orgRepository) ListAll(ctx context.Context) ([]domain.OrgUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM org_users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrgUser
	for rows.Next() {
		var user domain.OrgUser
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.ParentID,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
