package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/maintenance"
	"teamhub/internal/store"
	"teamhub/internal/validation"
)

// respondError maps a service error onto the HTTP status and envelope the
// API promises. Unknown errors are logged and hidden behind a 500.
func respondError(c fiber.Ctx, err error) error {
	var (
		verr *validation.Error
		aerr *authz.Error
		perr *maintenance.ApplierError
	)
	switch {
	case errors.As(err, &verr):
		return jsonFieldError(c, fiber.StatusBadRequest, verr.Field, verr.Error())
	case errors.As(err, &aerr):
		if aerr.Unauthenticated {
			return jsonError(c, fiber.StatusUnauthorized, aerr.Error())
		}
		return jsonError(c, fiber.StatusForbidden, aerr.Error())
	case errors.As(err, &perr):
		return jsonKindError(c, applierStatus(perr.Kind), string(perr.Kind), perr.Error())
	case errors.Is(err, maintenance.ErrProposalNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, maintenance.ErrProposalResolved):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrSelfDelete):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		return jsonError(c, fiber.StatusConflict, err.Error())
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return jsonError(c, fiber.StatusInternalServerError, "internal server error")
}

func applierStatus(kind maintenance.ErrorKind) int {
	switch kind {
	case maintenance.KindNotFound:
		return fiber.StatusNotFound
	case maintenance.KindConflict, maintenance.KindStale:
		return fiber.StatusConflict
	default:
		return fiber.StatusUnprocessableEntity
	}
}
