package handlers

import (
	"errors"

	"quest-verify-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError maps the service error taxonomy onto HTTP statuses:
// ClientError→400, ErrNotFound→404, ErrVerifierUnavailable→503, rest→500.
// Business failures never reach here — they are 200 responses with
// success:false.
func respondError(c *fiber.Ctx, err error) error {
	var clientErr *services.ClientError
	switch {
	case errors.As(err, &clientErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": clientErr.Message,
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	case errors.Is(err, services.ErrVerifierUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Verification service unavailable",
		})
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
}
