package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/google/uuid"
)

// recentPhotoCount is how many photos a family detail payload embeds.
const recentPhotoCount = 5

type FamilyService struct {
	store   repository.Store
	gate    *MembershipGate
	storage media.Storage
}

func NewFamilyService(store repository.Store, gate *MembershipGate, storage media.Storage) *FamilyService {
	return &FamilyService{store: store, gate: gate, storage: storage}
}

// Create stores the family and makes its creator the first admin member.
func (s *FamilyService) Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateFamilyRequest) (*models.Family, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if err := validation.Required("name", name, 100); err != nil {
		return nil, err
	}
	if err := validation.MaxLength("description", description, 1000); err != nil {
		return nil, err
	}

	family := &models.Family{Name: name, Description: description, CreatedBy: actorID}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Families().Create(ctx, family); err != nil {
			return err
		}
		return tx.Families().CreateMember(ctx, &models.FamilyMember{
			FamilyID:     family.ID,
			UserID:       actorID,
			Role:         models.RoleAdmin,
			Relationship: models.CreatorRelationship,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	slog.Info("family created", "family_id", family.ID.String(), "user_id", actorID.String())
	return s.store.Families().FindDetailed(ctx, family.ID, 0)
}

func (s *FamilyService) ListMine(ctx context.Context, actorID uuid.UUID) ([]models.Family, error) {
	families, err := s.store.Families().ListForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return families, nil
}

// Get returns the family with its members, children and latest photos.
func (s *FamilyService) Get(ctx context.Context, actorID, familyID uuid.UUID) (*models.Family, error) {
	if _, err := s.gate.RequireMember(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	family, err := s.store.Families().FindDetailed(ctx, familyID, recentPhotoCount)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFamilyNotFound
	}
	return family, err
}

func (s *FamilyService) Update(ctx context.Context, actorID, familyID uuid.UUID, req *dto.UpdateFamilyRequest) (*models.Family, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.Required("name", name, 100); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if err := validation.MaxLength("description", description, 1000); err != nil {
			return nil, err
		}
		fields["description"] = description
	}

	if err := s.store.Families().Update(ctx, familyID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	return s.Get(ctx, actorID, familyID)
}

// Delete removes the family and everything it owns. Stored photo files are
// removed afterwards on a best-effort basis.
func (s *FamilyService) Delete(ctx context.Context, actorID, familyID uuid.UUID) error {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return err
	}

	var photos []models.Photo
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if photos, err = tx.Photos().List(ctx, familyID); err != nil {
			return err
		}
		return tx.Families().Delete(ctx, familyID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFamilyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}

	for i := range photos {
		removeStoredPhoto(ctx, s.storage, &photos[i])
	}
	slog.Info("family deleted", "family_id", familyID.String(), "user_id", actorID.String(), "photos", len(photos))
	return nil
}

func removeStoredPhoto(ctx context.Context, storage media.Storage, p *models.Photo) {
	if storage == nil {
		return
	}
	for _, key := range []string{p.StorageKey, p.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := storage.Delete(ctx, key); err != nil {
			slog.Warn("failed to delete stored photo", "error", err, "family_id", p.FamilyID.String(), "key", key)
		}
	}
}
