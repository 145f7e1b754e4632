package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type childRepo struct {
	db *gorm.DB
}

func (r *childRepo) Create(ctx context.Context, child *models.Child) error {
	return translate(r.db.WithContext(ctx).Create(child).Error)
}

func (r *childRepo) FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Child, error) {
	var child models.Child
	if err := r.db.WithContext(ctx).Scopes(tenant.ForFamily(familyID)).First(&child, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &child, nil
}

func (r *childRepo) List(ctx context.Context, familyID uuid.UUID) ([]models.Child, error) {
	var children []models.Child
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForFamily(familyID)).
		Order("birth_date ASC").
		Find(&children).Error
	return children, err
}

func (r *childRepo) Update(ctx context.Context, familyID, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Child{}).
		Scopes(tenant.ForFamily(familyID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *childRepo) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(tenant.ForFamily(familyID)).Where("id = ?", id).Delete(&models.Child{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
