package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"teamhub/internal/maintenance"
	"teamhub/internal/models"
)

// MaintenanceHandler exposes the proposal workflow.
type MaintenanceHandler struct {
	svc *maintenance.Service
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(svc *maintenance.Service) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

type changeTypeInfo struct {
	ChangeType     models.ChangeType `json:"change_type"`
	TargetTable    string            `json:"target_table"`
	Entity         string            `json:"entity"`
	RequiresTarget bool              `json:"requires_target"`
}

// ChangeTypes lists the change types a proposal may carry.
func (h *MaintenanceHandler) ChangeTypes(c fiber.Ctx) error {
	types := models.ChangeTypes()
	out := make([]changeTypeInfo, len(types))
	for i, t := range types {
		op := t.Operation()
		out[i] = changeTypeInfo{
			ChangeType:     t,
			TargetTable:    t.Table(),
			Entity:         t.Entity(),
			RequiresTarget: op == models.OpUpdate || op == models.OpDelete,
		}
	}
	return jsonSuccess(c, out)
}

// List returns proposals visible to the caller, optionally filtered by
// ?status= and grouped by status with ?grouped=true.
func (h *MaintenanceHandler) List(c fiber.Ctx) error {
	items, err := h.svc.List(c.Context(), currentUser(c), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	if c.Query("grouped") == "true" {
		return jsonSuccess(c, maintenance.Group(items))
	}
	return jsonSuccess(c, items)
}

// Get returns one proposal.
func (h *MaintenanceHandler) Get(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.svc.Get(c.Context(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, item)
}

// Diff returns the JSON Patch approving the proposal would apply.
func (h *MaintenanceHandler) Diff(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	patch, err := h.svc.Diff(c.Context(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, patch)
}

// Propose records a new pending proposal.
func (h *MaintenanceHandler) Propose(c fiber.Ctx) error {
	var sub maintenance.Submission
	if err := decodeBody(c, &sub); err != nil {
		return respondError(c, err)
	}
	p, err := h.svc.Submit(c.Context(), currentUser(c), sub)
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, maintenance.Item{Proposal: *p, Summary: maintenance.Summarize(p)})
}

// Approve applies a pending proposal.
func (h *MaintenanceHandler) Approve(c fiber.Ctx) error {
	return h.review(c, h.svc.Approve)
}

// Reject closes a pending proposal without applying it.
func (h *MaintenanceHandler) Reject(c fiber.Ctx) error {
	return h.review(c, h.svc.Reject)
}

type reviewFunc func(ctx context.Context, user *models.User, id uuid.UUID, notes string) (*models.Proposal, error)

func (h *MaintenanceHandler) review(c fiber.Ctx, fn reviewFunc) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req reviewRequest
	if err := decodeBody(c, &req); err != nil {
		return respondError(c, err)
	}
	p, err := fn(c.Context(), currentUser(c), id, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, maintenance.Item{Proposal: *p, Summary: maintenance.Summarize(p)})
}
