package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type proposalRepo struct {
	s *Store
}

func (r *proposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.users[p.SubmittedBy]; !ok {
			return store.ErrConflict
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if _, exists := st.proposals[p.ID]; exists {
			return store.ErrConflict
		}
		if p.Status == "" {
			p.Status = models.StatusPending
		}
		p.CreatedAt = r.s.now()
		p.SubmitterName = ""
		st.proposals[p.ID] = *p
		p.SubmitterName = st.users[p.SubmittedBy].Name
		return nil
	})
}

func (r *proposalRepo) Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var out models.Proposal
	err := r.s.with(func(st *state) error {
		p, ok := st.proposals[id]
		if !ok {
			return store.ErrNotFound
		}
		out = withSubmitter(st, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is Get: a transaction already holds the store lock.
func (r *proposalRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return r.Get(ctx, id)
}

func (r *proposalRepo) List(ctx context.Context, f store.ProposalFilter) ([]models.Proposal, error) {
	out := []models.Proposal{}
	err := r.s.with(func(st *state) error {
		for _, p := range st.proposals {
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.SubmittedBy != nil && p.SubmittedBy != *f.SubmittedBy {
				continue
			}
			out = append(out, withSubmitter(st, p))
		}
		return nil
	})
	// Newest first
	slices.SortFunc(out, func(a, b models.Proposal) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, err
}

func (r *proposalRepo) Resolve(ctx context.Context, id uuid.UUID, status string, reviewer uuid.UUID, comments *string) (*models.Proposal, error) {
	var out models.Proposal
	err := r.s.with(func(st *state) error {
		p, ok := st.proposals[id]
		if !ok || p.Status != models.StatusPending {
			return store.ErrNotFound
		}
		now := r.s.now()
		p.Status = status
		p.ReviewedBy = &reviewer
		p.ReviewedAt = &now
		p.ReviewComments = comments
		st.proposals[id] = p
		out = withSubmitter(st, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *proposalRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.s.with(func(st *state) error {
		for _, p := range st.proposals {
			if p.Status == models.StatusPending {
				n++
			}
		}
		return nil
	})
	return n, err
}

func withSubmitter(st *state, p models.Proposal) models.Proposal {
	p.SubmitterName = st.users[p.SubmittedBy].Name
	return p
}
