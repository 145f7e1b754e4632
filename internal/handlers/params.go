package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// paramID parses a UUID route parameter.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &validation.Error{Field: name, Message: name + " must be a valid id"}
	}
	return id, nil
}

// actorAndFamily resolves the caller and the :familyId parameter, writing the
// error response itself when either is missing.
func actorAndFamily(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool, error) {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, false, unauthorized(c)
	}
	familyID, err := paramID(c, "familyId")
	if err != nil {
		return uuid.Nil, uuid.Nil, false, respondError(c, err)
	}
	return userID, familyID, true, nil
}
