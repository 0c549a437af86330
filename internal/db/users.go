package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type users struct {
	q querier
}

const userColumns = `id, email, name, role, maintenance_access, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.MaintenanceAccess, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *users) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *users) List(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
}

func (r *users) ListByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	if len(roles) == 0 {
		return r.List(ctx)
	}
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = ANY($1) ORDER BY name, id`, roles)
}

func (r *users) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *users) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, maintenance_access)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Name, u.Role, u.MaintenanceAccess).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

func (r *users) SetRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, role))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *users) SetMaintenanceAccess(ctx context.Context, id uuid.UUID, enabled bool) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `
		UPDATE users SET maintenance_access = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, enabled))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *users) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
