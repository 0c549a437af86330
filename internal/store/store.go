// Package store defines the persistence boundary used by the services. The
// Postgres implementation lives in internal/db and an in-memory one in
// internal/store/memory.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"teamhub/internal/models"
)

// Store error sentinels. Implementations wrap driver errors into these.
var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict covers unique and foreign key violations.
	ErrConflict = errors.New("record conflicts with existing data")
)

// Repository is the CRUD surface shared by the content entities.
type Repository[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context) ([]T, error)
	// Create assigns an id when none is set and stamps both timestamps.
	Create(ctx context.Context, v *T) error
	// Update replaces the stored row and refreshes updated_at.
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResourceRepository adds category lookups to resources.
type ResourceRepository interface {
	Repository[models.Resource]
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// PageRepository adds slug lookups to pages.
type PageRepository interface {
	Repository[models.Page]
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
}

// ProposalFilter narrows a proposal listing. Zero values match everything.
type ProposalFilter struct {
	Status      string
	SubmittedBy *uuid.UUID
}

// ProposalRepository persists maintenance proposals.
type ProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal) error
	Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	// GetForUpdate reads the proposal and holds a row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	List(ctx context.Context, f ProposalFilter) ([]models.Proposal, error)
	// Resolve moves a pending proposal to status. It returns ErrNotFound when
	// no pending proposal with that id exists.
	Resolve(ctx context.Context, id uuid.UUID, status string, reviewer uuid.UUID, comments *string) (*models.Proposal, error)
	CountPending(ctx context.Context) (int, error)
}

// UserRepository persists users.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRoles(ctx context.Context, roles ...string) ([]models.User, error)
	// Create inserts u, keeping u.ID when it is set.
	Create(ctx context.Context, u *models.User) error
	SetRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error)
	SetMaintenanceAccess(ctx context.Context, id uuid.UUID, enabled bool) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OutreachRepository persists outreach events and participation.
type OutreachRepository interface {
	CreateEvent(ctx context.Context, e *models.OutreachEvent) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.OutreachEvent, error)
	ListEvents(ctx context.Context) ([]models.OutreachEvent, error)
	// AddParticipation returns ErrConflict when the user is already recorded
	// for the event.
	AddParticipation(ctx context.Context, p *models.OutreachParticipation) error
	ListParticipations(ctx context.Context, eventID uuid.UUID) ([]models.OutreachParticipation, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// SettingRepository persists site settings.
type SettingRepository interface {
	List(ctx context.Context) ([]models.SiteSetting, error)
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
	Set(ctx context.Context, key, value string) (*models.SiteSetting, error)
}

// Store groups the repositories. Repositories obtained inside WithTx share
// the transaction.
type Store interface {
	Robots() Repository[models.Robot]
	Sponsors() Repository[models.Sponsor]
	ResourceCategories() Repository[models.ResourceCategory]
	Resources() ResourceRepository
	Subteams() Repository[models.Subteam]
	Pages() PageRepository
	SlideshowImages() Repository[models.SlideshowImage]

	Proposals() ProposalRepository
	Users() UserRepository
	Outreach() OutreachRepository
	Settings() SettingRepository

	// WithTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
