package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type photoRepo struct {
	db *gorm.DB
}

func (r *photoRepo) Create(ctx context.Context, photo *models.Photo) error {
	return translate(r.db.WithContext(ctx).Omit("UploadedBy").Create(photo).Error)
}

func (r *photoRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

func (r *photoRepo) List(ctx context.Context, familyID uuid.UUID) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForFamily(familyID)).
		Preload("UploadedBy").
		Order("created_at DESC").
		Find(&photos).Error
	return photos, err
}

func (r *photoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Photo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
