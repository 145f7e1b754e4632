package handlers

import (
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type FamilyHandler struct {
	familyService *services.FamilyService
	childService  *services.ChildService
}

func NewFamilyHandler(familyService *services.FamilyService, childService *services.ChildService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService, childService: childService}
}

func (h *FamilyHandler) Create(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	family, err := h.familyService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(family))
}

func (h *FamilyHandler) ListMine(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	families, err := h.familyService.ListMine(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(families))
}

func (h *FamilyHandler) Get(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	family, err := h.familyService.Get(c.UserContext(), userID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(family))
}

func (h *FamilyHandler) Update(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	var req dto.UpdateFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	family, err := h.familyService.Update(c.UserContext(), userID, familyID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(family))
}

func (h *FamilyHandler) Delete(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	if err := h.familyService.Delete(c.UserContext(), userID, familyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(dto.MessageData{Message: "Family deleted"}))
}

// Children

func (h *FamilyHandler) CreateChild(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	var req dto.CreateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	child, err := h.childService.Create(c.UserContext(), userID, familyID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(child))
}

func (h *FamilyHandler) ListChildren(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	children, err := h.childService.List(c.UserContext(), userID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(children))
}

func (h *FamilyHandler) GetChild(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}
	childID, err := paramID(c, "childId")
	if err != nil {
		return respondError(c, err)
	}

	child, err := h.childService.Get(c.UserContext(), userID, familyID, childID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(child))
}

func (h *FamilyHandler) UpdateChild(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}
	childID, err := paramID(c, "childId")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	child, err := h.childService.Update(c.UserContext(), userID, familyID, childID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(child))
}

func (h *FamilyHandler) DeleteChild(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}
	childID, err := paramID(c, "childId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.childService.Delete(c.UserContext(), userID, familyID, childID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(dto.MessageData{Message: "Child removed"}))
}
