package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// CurrentUser loads the user behind a valid access token. A token whose
// user has been removed from the database stays signature-valid until it
// expires; the lookup rejects it with 401.
func CurrentUser(users repository.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized"))
		}

		user, err := users.FindByID(c.UserContext(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized: account no longer exists"))
		}
		if err != nil {
			slog.Error("failed to load current user", "user_id", userID.String(), "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
		}

		tenant.SetCurrentUser(c, user)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: user.ID.String()})
		}
		return c.Next()
	}
}
