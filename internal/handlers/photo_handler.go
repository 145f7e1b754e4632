package handlers

import (
	"io"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type PhotoHandler struct {
	photoService *services.PhotoService
	processor    *media.Processor
}

func NewPhotoHandler(photoService *services.PhotoService, processor *media.Processor) *PhotoHandler {
	return &PhotoHandler{photoService: photoService, processor: processor}
}

func (h *PhotoHandler) List(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	photos, err := h.photoService.List(c.UserContext(), userID, familyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(photos))
}

// Upload accepts a multipart form with the image in "photo" and optional
// title and description fields.
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	userID, familyID, ok, err := actorAndFamily(c)
	if !ok {
		return err
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return respondError(c, &validation.Error{Field: "photo", Message: "photo file is required"})
	}
	if err := h.processor.Check(file.Size); err != nil {
		return respondError(c, &validation.Error{Field: "photo", Message: err.Error()})
	}

	f, err := file.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.processor.MaxBytes()+1))
	if err != nil {
		return respondError(c, err)
	}

	photo, err := h.photoService.Upload(c.UserContext(), userID, familyID, &services.PhotoUpload{
		FileName:    file.Filename,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Data:        data,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(photo))
}

func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	photoID, err := paramID(c, "photoId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.photoService.Delete(c.UserContext(), userID, photoID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(dto.MessageData{Message: "Photo deleted"}))
}
