package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

// Request is one change handed to an applier, from an approved proposal or
// from the direct-apply path.
type Request struct {
	ChangeType models.ChangeType
	TargetID   *uuid.UUID
	// TargetVersion is the target's updated_at when the change was drafted.
	// Nil skips the staleness check.
	TargetVersion *time.Time
	Payload       models.Payload
}

// Applier performs the mutation for one entity family.
type Applier interface {
	// Apply mutates the store and returns the id of the affected entity.
	Apply(ctx context.Context, s store.Store, req Request) (uuid.UUID, error)
	// Version returns the target's current updated_at.
	Version(ctx context.Context, s store.Store, id uuid.UUID) (time.Time, error)
	// Preview renders the target as JSON before and after req, without
	// writing anything.
	Preview(ctx context.Context, s store.Store, req Request) (before, after []byte, err error)
}

type entity[T any] interface {
	*T
	Meta() *models.Record
}

// family applies create, update and delete changes for one entity type.
type family[T any, P entity[T], D models.Payload] struct {
	name string
	repo func(store.Store) store.Repository[T]
	// fill copies the payload onto the entity.
	fill func(dst *T, data D)
	// check runs reference and uniqueness checks before a write. self is the
	// id being updated, nil on create.
	check func(ctx context.Context, s store.Store, t models.ChangeType, data D, self *uuid.UUID) error
	// guard runs before a delete.
	guard func(ctx context.Context, s store.Store, t models.ChangeType, id uuid.UUID) error
}

func (f *family[T, P, D]) Version(ctx context.Context, s store.Store, id uuid.UUID) (time.Time, error) {
	v, err := f.repo(s).Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return P(v).Meta().UpdatedAt, nil
}

func (f *family[T, P, D]) Preview(ctx context.Context, s store.Store, req Request) ([]byte, []byte, error) {
	var before T
	if req.TargetID != nil {
		cur, err := f.current(ctx, s, Request{ChangeType: req.ChangeType, TargetID: req.TargetID})
		if err != nil {
			return nil, nil, err
		}
		before = *cur
	}
	b, err := json.Marshal(before)
	if err != nil {
		return nil, nil, err
	}
	if req.ChangeType.IsDelete() {
		return b, []byte("{}"), nil
	}

	data, ok := req.Payload.(D)
	if !ok {
		return nil, nil, applierErr(KindInvalid, req.ChangeType, nil, "unexpected payload %T", req.Payload)
	}
	after := before
	f.fill(&after, data)
	a, err := json.Marshal(after)
	if err != nil {
		return nil, nil, err
	}
	return b, a, nil
}

func (f *family[T, P, D]) Apply(ctx context.Context, s store.Store, req Request) (uuid.UUID, error) {
	t := req.ChangeType
	op := t.Operation()

	if op == models.OpDelete {
		if req.TargetID == nil {
			return uuid.Nil, applierErr(KindInvalid, t, nil, "target_id is required")
		}
		return *req.TargetID, f.delete(ctx, s, req)
	}

	data, ok := req.Payload.(D)
	if !ok {
		return uuid.Nil, applierErr(KindInvalid, t, nil, "unexpected payload %T", req.Payload)
	}
	if err := validation.Struct(data); err != nil {
		return uuid.Nil, applierErr(KindInvalid, t, err, "%v", err)
	}

	switch {
	case op == models.OpCreate && req.TargetID != nil:
		return uuid.Nil, applierErr(KindInvalid, t, nil, "target_id must be empty")
	case op == models.OpUpdate && req.TargetID == nil:
		return uuid.Nil, applierErr(KindInvalid, t, nil, "target_id is required")
	case req.TargetID != nil:
		return *req.TargetID, f.update(ctx, s, req, data)
	}
	return f.create(ctx, s, req, data)
}

func (f *family[T, P, D]) current(ctx context.Context, s store.Store, req Request) (*T, error) {
	v, err := f.repo(s).Get(ctx, *req.TargetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, applierErr(KindNotFound, req.ChangeType, err, "%s %s not found", f.name, req.TargetID)
	}
	if err != nil {
		return nil, err
	}
	if req.TargetVersion != nil && !P(v).Meta().UpdatedAt.Equal(*req.TargetVersion) {
		return nil, applierErr(KindStale, req.ChangeType, nil, "%s %s was modified after this change was proposed", f.name, req.TargetID)
	}
	return v, nil
}

func (f *family[T, P, D]) create(ctx context.Context, s store.Store, req Request, data D) (uuid.UUID, error) {
	if f.check != nil {
		if err := f.check(ctx, s, req.ChangeType, data, nil); err != nil {
			return uuid.Nil, err
		}
	}
	var v T
	f.fill(&v, data)
	if err := f.repo(s).Create(ctx, &v); err != nil {
		return uuid.Nil, f.storeErr(req.ChangeType, err)
	}
	return P(&v).Meta().ID, nil
}

func (f *family[T, P, D]) update(ctx context.Context, s store.Store, req Request, data D) error {
	v, err := f.current(ctx, s, req)
	if err != nil {
		return err
	}
	if f.check != nil {
		if err := f.check(ctx, s, req.ChangeType, data, req.TargetID); err != nil {
			return err
		}
	}
	f.fill(v, data)
	if err := f.repo(s).Update(ctx, v); err != nil {
		return f.storeErr(req.ChangeType, err)
	}
	return nil
}

func (f *family[T, P, D]) delete(ctx context.Context, s store.Store, req Request) error {
	if _, err := f.current(ctx, s, req); err != nil {
		return err
	}
	if f.guard != nil {
		if err := f.guard(ctx, s, req.ChangeType, *req.TargetID); err != nil {
			return err
		}
	}
	if err := f.repo(s).Delete(ctx, *req.TargetID); err != nil {
		return f.storeErr(req.ChangeType, err)
	}
	return nil
}

func (f *family[T, P, D]) storeErr(t models.ChangeType, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return applierErr(KindNotFound, t, err, "%s not found", f.name)
	case errors.Is(err, store.ErrConflict):
		return applierErr(KindConflict, t, err, "%s conflicts with existing data", f.name)
	}
	return err
}

// Registry dispatches change types to their appliers.
type Registry struct {
	appliers map[models.ChangeType]Applier
}

// NewRegistry wires every change type to its applier and fails if any known
// change type is left without one.
func NewRegistry() (*Registry, error) {
	robots := &family[models.Robot, *models.Robot, *models.RobotData]{
		name: "robot",
		repo: func(s store.Store) store.Repository[models.Robot] { return s.Robots() },
		fill: func(dst *models.Robot, d *models.RobotData) {
			dst.Year, dst.Name, dst.Game, dst.Description, dst.ImageURL = d.Year, d.Name, d.Game, d.Description, d.ImageURL
		},
	}
	sponsors := &family[models.Sponsor, *models.Sponsor, *models.SponsorData]{
		name: "sponsor",
		repo: func(s store.Store) store.Repository[models.Sponsor] { return s.Sponsors() },
		fill: func(dst *models.Sponsor, d *models.SponsorData) {
			dst.Name, dst.Tier, dst.WebsiteURL, dst.LogoURL, dst.DisplayOrder = d.Name, d.Tier, d.WebsiteURL, d.LogoURL, d.DisplayOrder
		},
	}
	categories := &family[models.ResourceCategory, *models.ResourceCategory, *models.ResourceCategoryData]{
		name: "resource category",
		repo: func(s store.Store) store.Repository[models.ResourceCategory] { return s.ResourceCategories() },
		fill: func(dst *models.ResourceCategory, d *models.ResourceCategoryData) {
			dst.Name, dst.Description, dst.DisplayOrder = d.Name, d.Description, d.DisplayOrder
		},
		guard: checkCategoryUnused,
	}
	resources := &family[models.Resource, *models.Resource, *models.ResourceData]{
		name: "resource",
		repo: func(s store.Store) store.Repository[models.Resource] { return s.Resources() },
		fill: func(dst *models.Resource, d *models.ResourceData) {
			dst.CategoryID, dst.Title, dst.URL, dst.Description = d.CategoryID, d.Title, d.URL, d.Description
		},
		check: checkResourceCategory,
	}
	subteams := &family[models.Subteam, *models.Subteam, *models.SubteamData]{
		name: "subteam",
		repo: func(s store.Store) store.Repository[models.Subteam] { return s.Subteams() },
		fill: func(dst *models.Subteam, d *models.SubteamData) {
			dst.Name, dst.Description, dst.DisplayOrder = d.Name, d.Description, d.DisplayOrder
		},
	}
	pages := &family[models.Page, *models.Page, *models.PageData]{
		name: "page",
		repo: func(s store.Store) store.Repository[models.Page] { return s.Pages() },
		fill: func(dst *models.Page, d *models.PageData) {
			dst.Title = d.Title
			dst.Slug = validation.NormalizeSlug(d.Slug)
			dst.Content = validation.SanitizeHTML(d.Content)
			dst.Published = d.Published
		},
		check: checkPageSlug,
	}
	slides := &family[models.SlideshowImage, *models.SlideshowImage, *models.SlideshowImageData]{
		name: "slideshow image",
		repo: func(s store.Store) store.Repository[models.SlideshowImage] { return s.SlideshowImages() },
		fill: func(dst *models.SlideshowImage, d *models.SlideshowImageData) {
			dst.ImageURL, dst.Caption, dst.DisplayOrder = d.ImageURL, d.Caption, d.DisplayOrder
		},
	}

	return newRegistry(map[models.ChangeType]Applier{
		models.ChangeSlideshowImage:         slides,
		models.ChangeSlideshowImageDelete:   slides,
		models.ChangeRobot:                  robots,
		models.ChangeRobotDelete:            robots,
		models.ChangeSponsor:                sponsors,
		models.ChangeSponsorDelete:          sponsors,
		models.ChangeResource:               resources,
		models.ChangeResourceDelete:         resources,
		models.ChangeResourceCategory:       categories,
		models.ChangeResourceCategoryDelete: categories,
		models.ChangeSubteamCreate:          subteams,
		models.ChangeSubteamUpdate:          subteams,
		models.ChangeSubteamDelete:          subteams,
		models.ChangePage:                   pages,
		models.ChangePageDelete:             pages,
	})
}

func newRegistry(appliers map[models.ChangeType]Applier) (*Registry, error) {
	for _, t := range models.ChangeTypes() {
		if appliers[t] == nil {
			return nil, fmt.Errorf("no applier registered for change type %q", t)
		}
	}
	for t := range appliers {
		if !t.Valid() {
			return nil, fmt.Errorf("applier registered for unknown change type %q", t)
		}
	}
	return &Registry{appliers: appliers}, nil
}

// MustNewRegistry is NewRegistry for startup wiring.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// For returns the applier for t.
func (r *Registry) For(t models.ChangeType) (Applier, error) {
	a, ok := r.appliers[t]
	if !ok {
		return nil, validation.Errorf("change_type", "unknown change type %q", t)
	}
	return a, nil
}

// Apply dispatches req to its applier.
func (r *Registry) Apply(ctx context.Context, s store.Store, req Request) (uuid.UUID, error) {
	a, err := r.For(req.ChangeType)
	if err != nil {
		return uuid.Nil, err
	}
	return a.Apply(ctx, s, req)
}

func checkResourceCategory(ctx context.Context, s store.Store, t models.ChangeType, d *models.ResourceData, _ *uuid.UUID) error {
	_, err := s.ResourceCategories().Get(ctx, d.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return applierErr(KindInvalid, t, err, "resource category %s does not exist", d.CategoryID)
	}
	return err
}

func checkPageSlug(ctx context.Context, s store.Store, t models.ChangeType, d *models.PageData, self *uuid.UUID) error {
	slug := validation.NormalizeSlug(d.Slug)
	existing, err := s.Pages().GetBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if self == nil || existing.ID != *self {
		return applierErr(KindConflict, t, store.ErrConflict, "slug %q is already used by another page", slug)
	}
	return nil
}

func checkCategoryUnused(ctx context.Context, s store.Store, t models.ChangeType, id uuid.UUID) error {
	n, err := s.Resources().CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return applierErr(KindConflict, t, store.ErrConflict, "resource category %s still has %d resources", id, n)
	}
	return nil
}
