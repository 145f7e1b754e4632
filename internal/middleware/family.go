package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type gateCheck func(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMember, error)

// FamilyMember rejects callers that are not members of :familyId.
func FamilyMember(gate *services.MembershipGate) fiber.Handler {
	return familyGuard(gate.RequireMember)
}

// FamilyAdmin rejects callers that are not admins of :familyId.
func FamilyAdmin(gate *services.MembershipGate) fiber.Handler {
	return familyGuard(gate.RequireAdmin)
}

// familyGuard resolves the membership once and hands it to the handler
// through both Locals and the user context, so the service layer's own gate
// check does not query again.
func familyGuard(check gateCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized"))
		}
		familyID, err := tenant.GetFamilyID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Error("familyId must be a valid id"))
		}

		member, err := check(c.UserContext(), userID, familyID)
		if errors.Is(err, services.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.Error(err.Error()))
		}
		if err != nil {
			slog.Error("membership check failed",
				"user_id", userID.String(), "family_id", familyID.String(), "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
		}

		tenant.SetMembership(c, member)
		c.SetUserContext(services.WithMembership(c.UserContext(), member))
		return c.Next()
	}
}
