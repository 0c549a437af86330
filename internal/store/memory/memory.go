// Package memory is an in-process store used for development without a
// database and by tests. Transactions run against a copy of the data that is
// swapped in on commit, so a failed transaction leaves nothing behind.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

type state struct {
	robots         map[uuid.UUID]models.Robot
	sponsors       map[uuid.UUID]models.Sponsor
	categories     map[uuid.UUID]models.ResourceCategory
	resources      map[uuid.UUID]models.Resource
	subteams       map[uuid.UUID]models.Subteam
	pages          map[uuid.UUID]models.Page
	slides         map[uuid.UUID]models.SlideshowImage
	proposals      map[uuid.UUID]models.Proposal
	users          map[uuid.UUID]models.User
	events         map[uuid.UUID]models.OutreachEvent
	participations map[uuid.UUID]models.OutreachParticipation
	settings       map[string]models.SiteSetting
}

func newState() *state {
	return &state{
		robots:         map[uuid.UUID]models.Robot{},
		sponsors:       map[uuid.UUID]models.Sponsor{},
		categories:     map[uuid.UUID]models.ResourceCategory{},
		resources:      map[uuid.UUID]models.Resource{},
		subteams:       map[uuid.UUID]models.Subteam{},
		pages:          map[uuid.UUID]models.Page{},
		slides:         map[uuid.UUID]models.SlideshowImage{},
		proposals:      map[uuid.UUID]models.Proposal{},
		users:          map[uuid.UUID]models.User{},
		events:         map[uuid.UUID]models.OutreachEvent{},
		participations: map[uuid.UUID]models.OutreachParticipation{},
		settings:       map[string]models.SiteSetting{},
	}
}

// Rows are stored by value, so a shallow copy of each map is a full snapshot.
func (s *state) clone() *state {
	return &state{
		robots:         maps.Clone(s.robots),
		sponsors:       maps.Clone(s.sponsors),
		categories:     maps.Clone(s.categories),
		resources:      maps.Clone(s.resources),
		subteams:       maps.Clone(s.subteams),
		pages:          maps.Clone(s.pages),
		slides:         maps.Clone(s.slides),
		proposals:      maps.Clone(s.proposals),
		users:          maps.Clone(s.users),
		events:         maps.Clone(s.events),
		participations: maps.Clone(s.participations),
		settings:       maps.Clone(s.settings),
	}
}

// Store implements store.Store in memory. Writers are serialized by a single
// mutex that a transaction holds until it commits or rolls back.
type Store struct {
	mu    *sync.Mutex
	state *state
	inTx  bool
	clock func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{mu: &sync.Mutex{}, state: newState(), clock: time.Now}
}

// now mirrors Postgres timestamp precision so versions compare the same way
// in both stores.
func (s *Store) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func (s *Store) with(fn func(*state) error) error {
	if s.inTx {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// WithTx runs fn against a snapshot and publishes it only when fn succeeds.
// Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, state: s.state.clone(), inTx: true, clock: s.clock}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Robots() store.Repository[models.Robot] {
	return &repo[models.Robot, *models.Robot]{s: s, table: func(st *state) map[uuid.UUID]models.Robot { return st.robots }}
}

func (s *Store) Sponsors() store.Repository[models.Sponsor] {
	return &repo[models.Sponsor, *models.Sponsor]{s: s, table: func(st *state) map[uuid.UUID]models.Sponsor { return st.sponsors }}
}

func (s *Store) ResourceCategories() store.Repository[models.ResourceCategory] {
	return &repo[models.ResourceCategory, *models.ResourceCategory]{
		s:     s,
		table: func(st *state) map[uuid.UUID]models.ResourceCategory { return st.categories },
		guard: func(st *state, id uuid.UUID) error {
			for _, r := range st.resources {
				if r.CategoryID == id {
					return store.ErrConflict
				}
			}
			return nil
		},
	}
}

func (s *Store) Resources() store.ResourceRepository {
	return &resourceRepo{repo[models.Resource, *models.Resource]{
		s:     s,
		table: func(st *state) map[uuid.UUID]models.Resource { return st.resources },
		check: func(st *state, r *models.Resource) error {
			if _, ok := st.categories[r.CategoryID]; !ok {
				return store.ErrConflict
			}
			return nil
		},
	}}
}

func (s *Store) Subteams() store.Repository[models.Subteam] {
	return &repo[models.Subteam, *models.Subteam]{s: s, table: func(st *state) map[uuid.UUID]models.Subteam { return st.subteams }}
}

func (s *Store) Pages() store.PageRepository {
	return &pageRepo{repo[models.Page, *models.Page]{
		s:     s,
		table: func(st *state) map[uuid.UUID]models.Page { return st.pages },
		check: func(st *state, p *models.Page) error {
			for id, other := range st.pages {
				if id != p.ID && other.Slug == p.Slug {
					return store.ErrConflict
				}
			}
			return nil
		},
	}}
}

func (s *Store) SlideshowImages() store.Repository[models.SlideshowImage] {
	return &repo[models.SlideshowImage, *models.SlideshowImage]{s: s, table: func(st *state) map[uuid.UUID]models.SlideshowImage { return st.slides }}
}

func (s *Store) Proposals() store.ProposalRepository { return &proposalRepo{s: s} }
func (s *Store) Users() store.UserRepository         { return &userRepo{s: s} }
func (s *Store) Outreach() store.OutreachRepository  { return &outreachRepo{s: s} }
func (s *Store) Settings() store.SettingRepository   { return &settingRepo{s: s} }
