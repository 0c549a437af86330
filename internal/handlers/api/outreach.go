package api

import (
	"github.com/gofiber/fiber/v3"

	"teamhub/internal/outreach"
)

// OutreachHandler serves outreach events and the points leaderboard.
type OutreachHandler struct {
	svc *outreach.Service
}

// NewOutreachHandler creates a new outreach handler.
func NewOutreachHandler(svc *outreach.Service) *OutreachHandler {
	return &OutreachHandler{svc: svc}
}

// ListEvents returns every event, newest first.
func (h *OutreachHandler) ListEvents(c fiber.Ctx) error {
	events, err := h.svc.ListEvents(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, events)
}

// CreateEvent records an event. Operators only.
func (h *OutreachHandler) CreateEvent(c fiber.Ctx) error {
	var in outreach.EventInput
	if err := decodeBody(c, &in); err != nil {
		return respondError(c, err)
	}
	ev, err := h.svc.CreateEvent(c.Context(), currentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, ev)
}

// Participants lists who was credited for :id.
func (h *OutreachHandler) Participants(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	parts, err := h.svc.Participants(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, parts)
}

// AddParticipant credits a member for :id.
func (h *OutreachHandler) AddParticipant(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in outreach.ParticipantInput
	if err := decodeBody(c, &in); err != nil {
		return respondError(c, err)
	}
	part, err := h.svc.AddParticipant(c.Context(), currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, part)
}

// Leaderboard returns point totals, highest first.
func (h *OutreachHandler) Leaderboard(c fiber.Ctx) error {
	board, err := h.svc.Leaderboard(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, board)
}
