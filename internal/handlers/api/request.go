package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"teamhub/internal/middleware"
	"teamhub/internal/models"
	"teamhub/internal/validation"
)

// currentUser returns the session user, or nil for anonymous callers. The
// services turn a nil user into an authentication error.
func currentUser(c fiber.Ctx) *models.User {
	return middleware.CurrentUser(c)
}

// paramID parses the :id route parameter.
func paramID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, validation.Errorf("id", "must be a valid UUID")
	}
	return id, nil
}

// decodeBody unmarshals the JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(c fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &validation.Error{Message: "invalid JSON body"}
	}
	return nil
}
