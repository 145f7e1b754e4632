package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InviteHandler struct {
	inviteService *services.InviteService
}

func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Check is public: it lets the app show who is inviting before sign-in.
func (h *InviteHandler) Check(c *fiber.Ctx) error {
	summary, err := h.inviteService.CheckInvite(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(summary))
}

func (h *InviteHandler) FamilyByCode(c *fiber.Ctx) error {
	preview, err := h.inviteService.FamilyByInviteCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(preview))
}

func (h *InviteHandler) Create(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	if req.FamilyID == uuid.Nil {
		return respondError(c, &validation.Error{Field: "family_id", Message: "family_id is required"})
	}

	invite, err := h.inviteService.CreateInvite(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(invite))
}

func (h *InviteHandler) CreateCode(c *fiber.Ctx) error {
	userID, familyID, ok, err := h.familyTarget(c)
	if !ok {
		return err
	}

	invite, err := h.inviteService.CreateInviteCode(c.UserContext(), userID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(invite))
}

func (h *InviteHandler) CreateLink(c *fiber.Ctx) error {
	userID, familyID, ok, err := h.familyTarget(c)
	if !ok {
		return err
	}

	invite, err := h.inviteService.CreateInviteLink(c.UserContext(), userID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(invite))
}

// familyTarget reads the family from the :familyId parameter when the route
// has one and from the body's family_id otherwise.
func (h *InviteHandler) familyTarget(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool, error) {
	if c.Params("familyId") != "" {
		return actorAndFamily(c)
	}

	userID, err := tenant.GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, false, unauthorized(c)
	}
	var req dto.FamilyRefRequest
	if err := c.BodyParser(&req); err != nil {
		return uuid.Nil, uuid.Nil, false, badRequest(c)
	}
	if req.FamilyID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false, respondError(c, &validation.Error{Field: "family_id", Message: "family_id is required"})
	}
	return userID, req.FamilyID, true, nil
}

func (h *InviteHandler) List(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	invites, err := h.inviteService.ListInvites(c.UserContext(), userID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(invites))
}

func (h *InviteHandler) Revoke(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	inviteID, err := paramID(c, "inviteId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.inviteService.RevokeInvite(c.UserContext(), userID, inviteID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(dto.MessageData{Message: "Invitation revoked"}))
}

// Accept redeems the code in the path.
func (h *InviteHandler) Accept(c *fiber.Ctx) error {
	userID, req, ok, err := h.acceptRequest(c)
	if !ok {
		return err
	}

	resp, err := h.inviteService.AcceptInvite(c.UserContext(), c.Params("code"), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(resp))
}

// Join redeems the body's invite_code, or code when that is what the client
// sent.
func (h *InviteHandler) Join(c *fiber.Ctx) error {
	userID, req, ok, err := h.acceptRequest(c)
	if !ok {
		return err
	}

	code := strings.TrimSpace(req.InviteCode)
	field := "invite_code"
	if code == "" {
		code = strings.TrimSpace(req.Code)
		field = "code"
	}
	if err := validation.Required(field, code, 64); err != nil {
		return respondError(c, err)
	}

	resp, err := h.inviteService.JoinByCode(c.UserContext(), code, userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(resp))
}

func (h *InviteHandler) JoinByToken(c *fiber.Ctx) error {
	userID, req, ok, err := h.acceptRequest(c)
	if !ok {
		return err
	}

	token := strings.TrimSpace(req.Token)
	if err := validation.Required("token", token, 128); err != nil {
		return respondError(c, err)
	}

	resp, err := h.inviteService.JoinByToken(c.UserContext(), token, userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(resp))
}

// acceptRequest parses the optional accept body. An empty body is allowed.
func (h *InviteHandler) acceptRequest(c *fiber.Ctx) (uuid.UUID, *dto.AcceptInviteRequest, bool, error) {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return uuid.Nil, nil, false, unauthorized(c)
	}

	req := &dto.AcceptInviteRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return uuid.Nil, nil, false, badRequest(c)
		}
	}
	return userID, req, true, nil
}
