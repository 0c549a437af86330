package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type entity[T any] interface {
	*T
	Meta() *models.Record
}

// table maps one content entity onto its Postgres table. columns, values and
// dest list the non-record fields in the same order.
type table[T any, P entity[T]] struct {
	q       querier
	name    string
	columns []string
	order   string
	values  func(*T) []any
	dest    func(*T) []any
}

func (t *table[T, P]) selectSQL() string {
	return fmt.Sprintf("SELECT id, created_at, updated_at, %s FROM %s", strings.Join(t.columns, ", "), t.name)
}

func (t *table[T, P]) scanDest(v *T) []any {
	m := P(v).Meta()
	return append([]any{&m.ID, &m.CreatedAt, &m.UpdatedAt}, t.dest(v)...)
}

func (t *table[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var v T
	err := t.q.QueryRow(ctx, t.selectSQL()+" WHERE id = $1", id).Scan(t.scanDest(&v)...)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

func (t *table[T, P]) List(ctx context.Context) ([]T, error) {
	return t.query(ctx, t.selectSQL()+" ORDER BY "+t.order)
}

func (t *table[T, P]) query(ctx context.Context, sql string, args ...any) ([]T, error) {
	rows, err := t.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := rows.Scan(t.scanDest(&v)...); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t *table[T, P]) Create(ctx context.Context, v *T) error {
	m := P(v).Meta()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	placeholders := make([]string, len(t.columns)+1)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf(
		"INSERT INTO %s (id, %s) VALUES (%s) RETURNING created_at, updated_at",
		t.name, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "),
	)
	args := append([]any{m.ID}, t.values(v)...)
	return mapErr(t.q.QueryRow(ctx, sql, args...).Scan(&m.CreatedAt, &m.UpdatedAt))
}

// Update bumps updated_at past its previous value even within one
// transaction, so every write yields a new version.
func (t *table[T, P]) Update(ctx context.Context, v *T) error {
	m := P(v).Meta()

	sets := make([]string, len(t.columns))
	for i, col := range t.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	sql := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond') WHERE id = $1 RETURNING created_at, updated_at",
		t.name, strings.Join(sets, ", "),
	)
	args := append([]any{m.ID}, t.values(v)...)
	return mapErr(t.q.QueryRow(ctx, sql, args...).Scan(&m.CreatedAt, &m.UpdatedAt))
}

func (t *table[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := t.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
	if err != nil {
		return mapErr(err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

type resourceTable struct {
	table[models.Resource, *models.Resource]
}

func (t *resourceTable) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := t.q.QueryRow(ctx, `SELECT COUNT(*) FROM resources WHERE category_id = $1`, categoryID).Scan(&n)
	return n, err
}

type pageTable struct {
	table[models.Page, *models.Page]
}

func (t *pageTable) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var p models.Page
	err := t.q.QueryRow(ctx, t.selectSQL()+" WHERE slug = $1", slug).Scan(t.scanDest(&p)...)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}
