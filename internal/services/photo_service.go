package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/google/uuid"
)

type PhotoService struct {
	photos    repository.PhotoStore
	gate      *MembershipGate
	processor *media.Processor
	storage   media.Storage
}

func NewPhotoService(photos repository.PhotoStore, gate *MembershipGate, processor *media.Processor, storage media.Storage) *PhotoService {
	return &PhotoService{photos: photos, gate: gate, processor: processor, storage: storage}
}

type PhotoUpload struct {
	FileName    string
	Title       string
	Description string
	Data        []byte
}

// Upload processes the image, stores it with its thumbnail and records it.
func (s *PhotoService) Upload(ctx context.Context, actorID, familyID uuid.UUID, up *PhotoUpload) (*models.Photo, error) {
	if _, err := s.gate.RequireMember(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(up.Title)
	if err := validation.MaxLength("title", title, 255); err != nil {
		return nil, err
	}

	img, err := s.processor.Process(up.Data)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) || errors.Is(err, media.ErrTooLarge) || errors.Is(err, media.ErrEmpty) {
			return nil, &validation.Error{Field: "photo", Message: err.Error()}
		}
		return nil, err
	}

	fileName := media.CleanFileName(up.FileName)
	if title == "" {
		title = fileName
	}

	id := uuid.New()
	photo := &models.Photo{
		ID:           id,
		FamilyID:     familyID,
		UploadedByID: actorID,
		Title:        title,
		Description:  strings.TrimSpace(up.Description),
		FileName:     fileName,
		StorageKey:   fmt.Sprintf("families/%s/%s%s", familyID, id, img.Ext),
		ThumbnailKey: fmt.Sprintf("families/%s/thumbnails/%s%s", familyID, id, img.Ext),
		Width:        img.Width,
		Height:       img.Height,
		FileSize:     int64(len(img.Data)),
		FileType:     img.ContentType,
	}

	if photo.URL, err = s.storage.Put(ctx, photo.StorageKey, img.ContentType, img.Data); err != nil {
		return nil, err
	}
	if photo.ThumbnailURL, err = s.storage.Put(ctx, photo.ThumbnailKey, img.ContentType, img.Thumbnail); err != nil {
		removeStoredPhoto(ctx, s.storage, &models.Photo{FamilyID: familyID, StorageKey: photo.StorageKey})
		return nil, err
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		removeStoredPhoto(ctx, s.storage, photo)
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	slog.Info("photo uploaded", "family_id", familyID.String(), "user_id", actorID.String(), "size", photo.FileSize)
	return photo, nil
}

func (s *PhotoService) List(ctx context.Context, actorID, familyID uuid.UUID) ([]models.Photo, error) {
	if _, err := s.gate.RequireMember(ctx, actorID, familyID); err != nil {
		return nil, err
	}
	return s.photos.List(ctx, familyID)
}

// Delete lets the uploader or a family admin remove a photo.
func (s *PhotoService) Delete(ctx context.Context, actorID, photoID uuid.UUID) error {
	photo, err := s.photos.FindByID(ctx, photoID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	member, err := s.gate.RequireMember(ctx, actorID, photo.FamilyID)
	if err != nil {
		return err
	}
	if photo.UploadedByID != actorID && !member.IsAdmin() {
		return ErrNotUploader
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPhotoNotFound
		}
		return err
	}

	removeStoredPhoto(ctx, s.storage, photo)
	return nil
}
