package api

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"teamhub/internal/authz"
	"teamhub/internal/maintenance"
	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

// ContentHandler serves one public content collection and its direct-edit
// endpoints. Writes go through the same appliers proposals use.
type ContentHandler[T any] struct {
	svc    *maintenance.Service
	gate   *authz.Gate
	repo   func() store.Repository[T]
	create models.ChangeType
	update models.ChangeType
	remove models.ChangeType
	// visible hides entries from callers without operator access. Nil shows
	// everything.
	visible func(*T) bool
}

// NewContentHandler creates a handler for one entity family.
func NewContentHandler[T any](svc *maintenance.Service, gate *authz.Gate, repo func() store.Repository[T], create, update, remove models.ChangeType) *ContentHandler[T] {
	return &ContentHandler[T]{svc: svc, gate: gate, repo: repo, create: create, update: update, remove: remove}
}

// WithVisibility restricts what non-operators can read.
func (h *ContentHandler[T]) WithVisibility(fn func(*T) bool) *ContentHandler[T] {
	h.visible = fn
	return h
}

func (h *ContentHandler[T]) canSee(c fiber.Ctx, v *T) bool {
	return h.visible == nil || h.visible(v) || h.gate.Can(currentUser(c), authz.ActionApply)
}

// List returns every visible entry.
func (h *ContentHandler[T]) List(c fiber.Ctx) error {
	all, err := h.repo().List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]T, 0, len(all))
	for i := range all {
		if h.canSee(c, &all[i]) {
			out = append(out, all[i])
		}
	}
	return jsonSuccess(c, out)
}

// Get returns one entry.
func (h *ContentHandler[T]) Get(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	v, err := h.repo().Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !h.canSee(c, v) {
		return respondError(c, store.ErrNotFound)
	}
	return jsonSuccess(c, v)
}

// Create applies a create change directly.
func (h *ContentHandler[T]) Create(c fiber.Ctx) error {
	id, err := h.apply(c, h.create, nil)
	if err != nil {
		return respondError(c, err)
	}
	return h.respondWith(c, id, fiber.StatusCreated)
}

// Update applies an update change to :id directly.
func (h *ContentHandler[T]) Update(c fiber.Ctx) error {
	target, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := h.apply(c, h.update, &target)
	if err != nil {
		return respondError(c, err)
	}
	return h.respondWith(c, id, fiber.StatusOK)
}

// Patch merges a JSON merge patch (RFC 7396) onto :id and applies the
// result as an update.
func (h *ContentHandler[T]) Patch(c fiber.Ctx) error {
	target, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.gate.Authorize(currentUser(c), authz.ActionApply); err != nil {
		return respondError(c, err)
	}
	current, err := h.repo().Get(c.Context(), target)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := json.Marshal(current)
	if err != nil {
		return respondError(c, err)
	}
	merged, err := jsonpatch.MergePatch(doc, c.Body())
	if err != nil {
		return respondError(c, &validation.Error{Message: "invalid merge patch: " + err.Error()})
	}

	id, err := h.svc.DirectApply(c.Context(), currentUser(c), maintenance.Change{
		ChangeType: h.update,
		TargetID:   &target,
		Data:       merged,
	})
	if err != nil {
		return respondError(c, err)
	}
	return h.respondWith(c, id, fiber.StatusOK)
}

// Delete removes :id directly.
func (h *ContentHandler[T]) Delete(c fiber.Ctx) error {
	target, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.svc.DirectApply(c.Context(), currentUser(c), maintenance.Change{
		ChangeType: h.remove,
		TargetID:   &target,
	}); err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": target, "deleted": true})
}

func (h *ContentHandler[T]) apply(c fiber.Ctx, t models.ChangeType, target *uuid.UUID) (uuid.UUID, error) {
	body := c.Body()
	if len(body) > 0 && !json.Valid(body) {
		return uuid.Nil, &validation.Error{Message: "invalid JSON body"}
	}
	return h.svc.DirectApply(c.Context(), currentUser(c), maintenance.Change{
		ChangeType: t,
		TargetID:   target,
		Data:       body,
	})
}

func (h *ContentHandler[T]) respondWith(c fiber.Ctx, id uuid.UUID, status int) error {
	v, err := h.repo().Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Status(status)
	return jsonSuccess(c, v)
}

// PageHandler adds slug lookup to the page collection.
type PageHandler struct {
	*ContentHandler[models.Page]
	pages func() store.PageRepository
}

// NewPageHandler creates the page handler. Unpublished pages are visible to
// operators only.
func NewPageHandler(svc *maintenance.Service, gate *authz.Gate, st store.Store) *PageHandler {
	content := NewContentHandler(svc, gate,
		func() store.Repository[models.Page] { return st.Pages() },
		models.ChangePage, models.ChangePage, models.ChangePageDelete,
	).WithVisibility(func(p *models.Page) bool { return p.Published })
	return &PageHandler{ContentHandler: content, pages: st.Pages}
}

// GetBySlug returns the page at /pages/slug/:slug.
func (h *PageHandler) GetBySlug(c fiber.Ctx) error {
	p, err := h.pages().GetBySlug(c.Context(), validation.NormalizeSlug(c.Params("slug")))
	if err != nil {
		return respondError(c, err)
	}
	if !h.canSee(c, p) {
		return respondError(c, store.ErrNotFound)
	}
	return jsonSuccess(c, p)
}
