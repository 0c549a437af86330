package api

import (
	"github.com/gofiber/fiber/v3"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/middleware"
	"teamhub/internal/models"
)

// AccountHandler serves the current user, user administration and site
// settings.
type AccountHandler struct {
	svc  *accounts.Service
	gate *authz.Gate
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(svc *accounts.Service, gate *authz.Gate) *AccountHandler {
	return &AccountHandler{svc: svc, gate: gate}
}

type meResponse struct {
	User        *models.User     `json:"user"`
	Capability  authz.Capability `json:"capability"`
	Permissions []authz.Action   `json:"permissions"`
}

// Me returns the caller with their capability and allowed actions.
func (h *AccountHandler) Me(c fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}
	return jsonSuccess(c, meResponse{
		User:        sess.User,
		Capability:  authz.Classify(sess.User),
		Permissions: h.gate.Permissions(sess.User),
	})
}

// ListUsers returns every user (admin only).
func (h *AccountHandler) ListUsers(c fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, users)
}

// SetRole changes the role of :id.
func (h *AccountHandler) SetRole(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeBody(c, &req); err != nil {
		return respondError(c, err)
	}
	u, err := h.svc.SetRole(c.Context(), currentUser(c), id, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, u)
}

// SetMaintenanceAccess toggles maintenance access for :id.
func (h *AccountHandler) SetMaintenanceAccess(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Enabled == nil {
		return jsonFieldError(c, fiber.StatusBadRequest, "enabled", "enabled: is required")
	}
	u, err := h.svc.SetMaintenanceAccess(c.Context(), currentUser(c), id, *req.Enabled)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, u)
}

// DeleteUser removes :id and everything they submitted.
func (h *AccountHandler) DeleteUser(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteUser(c.Context(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": id, "deleted": true})
}

// Settings returns all site settings.
func (h *AccountHandler) Settings(c fiber.Ctx) error {
	settings, err := h.svc.Settings(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, settings)
}

// Setting returns the setting at :key.
func (h *AccountHandler) Setting(c fiber.Ctx) error {
	s, err := h.svc.Setting(c.Context(), c.Params("key"))
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, s)
}

// SetSetting stores the setting at :key (admin only).
func (h *AccountHandler) SetSetting(c fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeBody(c, &req); err != nil {
		return respondError(c, err)
	}
	s, err := h.svc.SetSetting(c.Context(), currentUser(c), c.Params("key"), req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, s)
}
