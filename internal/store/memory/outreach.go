package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type outreachRepo struct {
	s *Store
}

func (r *outreachRepo) CreateEvent(ctx context.Context, e *models.OutreachEvent) error {
	return r.s.with(func(st *state) error {
		if e.CreatedBy != nil {
			if _, ok := st.users[*e.CreatedBy]; !ok {
				return store.ErrConflict
			}
		}
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		now := r.s.now()
		e.CreatedAt, e.UpdatedAt = now, now
		st.events[e.ID] = *e
		return nil
	})
}

func (r *outreachRepo) GetEvent(ctx context.Context, id uuid.UUID) (*models.OutreachEvent, error) {
	var out models.OutreachEvent
	err := r.s.with(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return store.ErrNotFound
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *outreachRepo) ListEvents(ctx context.Context) ([]models.OutreachEvent, error) {
	out := []models.OutreachEvent{}
	err := r.s.with(func(st *state) error {
		for _, e := range st.events {
			out = append(out, e)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.OutreachEvent) int {
		if c := b.EventDate.Compare(a.EventDate); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}

func (r *outreachRepo) AddParticipation(ctx context.Context, p *models.OutreachParticipation) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.events[p.EventID]; !ok {
			return store.ErrConflict
		}
		if _, ok := st.users[p.UserID]; !ok {
			return store.ErrConflict
		}
		for _, other := range st.participations {
			if other.EventID == p.EventID && other.UserID == p.UserID {
				return store.ErrConflict
			}
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		now := r.s.now()
		p.CreatedAt, p.UpdatedAt = now, now
		st.participations[p.ID] = *p
		return nil
	})
}

func (r *outreachRepo) ListParticipations(ctx context.Context, eventID uuid.UUID) ([]models.OutreachParticipation, error) {
	out := []models.OutreachParticipation{}
	err := r.s.with(func(st *state) error {
		for _, p := range st.participations {
			if p.EventID == eventID {
				out = append(out, p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.OutreachParticipation) int {
		if c := b.Points - a.Points; c != 0 {
			return c
		}
		return compareIDs(a.UserID, b.UserID)
	})
	return out, err
}

func (r *outreachRepo) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	totals := map[uuid.UUID]*models.LeaderboardEntry{}
	err := r.s.with(func(st *state) error {
		for _, p := range st.participations {
			e, ok := totals[p.UserID]
			if !ok {
				e = &models.LeaderboardEntry{UserID: p.UserID, Name: st.users[p.UserID].Name}
				totals[p.UserID] = e
			}
			e.Points += p.Points
			e.Events++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.LeaderboardEntry, 0, len(totals))
	for _, e := range totals {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b models.LeaderboardEntry) int {
		if c := b.Points - a.Points; c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compareIDs(a.UserID, b.UserID)
	})
	return out, nil
}
