package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/services"
)

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// failFor maps service errors onto HTTP statuses: validation errors
// are the caller's fault, missing rows are 404, the rest is 500.
func failFor(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrMissingExchangeRate),
		errors.Is(err, services.ErrInvalidVATPercent),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrNoAddress):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		return jsonError(c, fiber.StatusNotFound, "not found")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
}
