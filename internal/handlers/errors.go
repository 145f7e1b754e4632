package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const msgInvalidBody = "Invalid request body"

// statusFor maps a service error class to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrExpired):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the error envelope. Unclassified errors are logged,
// reported to Sentry and hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status != fiber.StatusInternalServerError {
		return c.Status(status).JSON(dto.Error(err.Error()))
	}

	attrs := []any{
		"action", c.Method() + " " + c.Route().Path,
		"error", err.Error(),
		"trace_id", requestID(c),
	}
	if userID, idErr := tenant.GetUserID(c); idErr == nil {
		attrs = append(attrs, "user_id", userID.String())
	}
	if familyID, idErr := tenant.GetFamilyID(c); idErr == nil {
		attrs = append(attrs, "family_id", familyID.String())
	}
	slog.Error("request failed", attrs...)

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("route", c.Route().Path)
			hub.CaptureException(err)
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Error(msgInvalidBody))
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized"))
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}
