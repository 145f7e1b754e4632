package tenant

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localsUser       = "user"
	localsCurrent    = "current_user"
	localsMembership = "membership"
)

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(localsUser).(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// SetCurrentUser stores the authenticated user loaded by middleware.
func SetCurrentUser(c *fiber.Ctx, user *models.User) {
	c.Locals(localsCurrent, user)
}

// GetCurrentUser returns the user loaded by middleware.CurrentUser, or nil.
func GetCurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsCurrent).(*models.User)
	return user
}

// SetMembership stores the membership resolved by the family middleware.
func SetMembership(c *fiber.Ctx, m *models.FamilyMember) {
	c.Locals(localsMembership, m)
}

func GetMembership(c *fiber.Ctx) *models.FamilyMember {
	m, _ := c.Locals(localsMembership).(*models.FamilyMember)
	return m
}

// GetFamilyID parses the :familyId route parameter.
func GetFamilyID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("familyId"))
}
