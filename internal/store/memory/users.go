package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out models.User
	err := r.s.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return store.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	return r.ListByRoles(ctx)
}

func (r *userRepo) ListByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	out := []models.User{}
	err := r.s.with(func(st *state) error {
		for _, u := range st.users {
			if len(roles) == 0 || slices.Contains(roles, u.Role) {
				out = append(out, u)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.User) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.s.with(func(st *state) error {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if _, exists := st.users[u.ID]; exists {
			return store.ErrConflict
		}
		if u.Email != "" {
			for _, other := range st.users {
				if strings.EqualFold(other.Email, u.Email) {
					return store.ErrConflict
				}
			}
		}
		if u.Role == "" {
			u.Role = models.RoleStudent
		}
		now := r.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) update(id uuid.UUID, fn func(u *models.User)) (*models.User, error) {
	var out models.User
	err := r.s.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return store.ErrNotFound
		}
		fn(&u)
		u.UpdatedAt = later(r.s.now(), u.UpdatedAt)
		st.users[id] = u
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) SetRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *userRepo) SetMaintenanceAccess(ctx context.Context, id uuid.UUID, enabled bool) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.MaintenanceAccess = enabled })
}

// Delete removes the user along with their proposals and outreach records,
// and clears them as reviewer or event creator elsewhere.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.users, id)
		for pid, p := range st.proposals {
			switch {
			case p.SubmittedBy == id:
				delete(st.proposals, pid)
			case p.ReviewedBy != nil && *p.ReviewedBy == id:
				p.ReviewedBy = nil
				st.proposals[pid] = p
			}
		}
		for pid, p := range st.participations {
			if p.UserID == id {
				delete(st.participations, pid)
			}
		}
		for eid, e := range st.events {
			if e.CreatedBy != nil && *e.CreatedBy == id {
				e.CreatedBy = nil
				st.events[eid] = e
			}
		}
		return nil
	})
}
