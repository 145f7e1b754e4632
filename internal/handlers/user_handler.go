package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the user loaded by the CurrentUser middleware when it
// ran, falling back to a lookup.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	if user := tenant.GetCurrentUser(c); user != nil {
		return c.JSON(dto.Success(user))
	}

	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(user))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(user))
}
