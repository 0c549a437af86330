package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type entity[T any] interface {
	*T
	Meta() *models.Record
}

// repo is the generic content table. check runs before every write and
// guard before every delete; both stand in for database constraints.
type repo[T any, P entity[T]] struct {
	s     *Store
	table func(*state) map[uuid.UUID]T
	check func(st *state, v *T) error
	guard func(st *state, id uuid.UUID) error
}

func (r *repo[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	err := r.s.with(func(st *state) error {
		v, ok := r.table(st)[id]
		if !ok {
			return store.ErrNotFound
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo[T, P]) List(ctx context.Context) ([]T, error) {
	var out []T
	err := r.s.with(func(st *state) error {
		out = make([]T, 0, len(r.table(st)))
		for _, v := range r.table(st) {
			out = append(out, v)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b T) int {
		ma, mb := P(&a).Meta(), P(&b).Meta()
		if c := ma.CreatedAt.Compare(mb.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(ma.ID, mb.ID)
	})
	return out, err
}

func (r *repo[T, P]) Create(ctx context.Context, v *T) error {
	return r.s.with(func(st *state) error {
		m := P(v).Meta()
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if _, exists := r.table(st)[m.ID]; exists {
			return store.ErrConflict
		}
		if r.check != nil {
			if err := r.check(st, v); err != nil {
				return err
			}
		}
		now := r.s.now()
		m.CreatedAt, m.UpdatedAt = now, now
		r.table(st)[m.ID] = *v
		return nil
	})
}

func (r *repo[T, P]) Update(ctx context.Context, v *T) error {
	return r.s.with(func(st *state) error {
		m := P(v).Meta()
		cur, ok := r.table(st)[m.ID]
		if !ok {
			return store.ErrNotFound
		}
		if r.check != nil {
			if err := r.check(st, v); err != nil {
				return err
			}
		}
		prev := P(&cur).Meta()
		m.CreatedAt = prev.CreatedAt
		m.UpdatedAt = later(r.s.now(), prev.UpdatedAt)
		r.table(st)[m.ID] = *v
		return nil
	})
}

func (r *repo[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.with(func(st *state) error {
		if _, ok := r.table(st)[id]; !ok {
			return store.ErrNotFound
		}
		if r.guard != nil {
			if err := r.guard(st, id); err != nil {
				return err
			}
		}
		delete(r.table(st), id)
		return nil
	})
}

type resourceRepo struct {
	repo[models.Resource, *models.Resource]
}

func (r *resourceRepo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := r.s.with(func(st *state) error {
		for _, res := range st.resources {
			if res.CategoryID == categoryID {
				n++
			}
		}
		return nil
	})
	return n, err
}

type pageRepo struct {
	repo[models.Page, *models.Page]
}

func (r *pageRepo) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var out *models.Page
	err := r.s.with(func(st *state) error {
		for _, p := range st.pages {
			if p.Slug == slug {
				out = &p
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

// later returns now, nudged forward when the clock has not moved past prev so
// every update produces a new version.
func later(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

func compareIDs(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
