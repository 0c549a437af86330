package api

import (
	"github.com/gofiber/fiber/v3"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated is jsonSuccess with a 201 status.
func jsonCreated(c fiber.Ctx, data any) error {
	c.Status(fiber.StatusCreated)
	return jsonSuccess(c, data)
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// jsonFieldError reports a problem with one input field.
func jsonFieldError(c fiber.Ctx, status int, field, message string) error {
	body := fiber.Map{
		"status": "error",
		"error":  message,
	}
	if field != "" {
		body["field"] = field
	}
	return c.Status(status).JSON(body)
}

// jsonKindError reports an applier failure together with its kind.
func jsonKindError(c fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
		"kind":   kind,
	})
}
