package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.Success(resp))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(resp))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(resp))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(dto.MessageData{Message: "Logged out successfully"}))
}

// ForgotPassword always answers the same way so the endpoint cannot be used
// to probe which emails are registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := h.authService.ForgotPassword(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(dto.MessageData{
		Message: "If that email is registered, a reset link is on its way",
	}))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(dto.MessageData{Message: "Password has been reset"}))
}

func (h *AuthHandler) SendVerification(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.authService.SendVerification(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(dto.MessageData{Message: "Verification email sent"}))
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.authService.VerifyEmail(c.UserContext(), c.Params("token")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.Success(dto.MessageData{Message: "Email verified"}))
}
