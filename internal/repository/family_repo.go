package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type familyRepo struct {
	db *gorm.DB
}

func (r *familyRepo) Create(ctx context.Context, family *models.Family) error {
	return translate(r.db.WithContext(ctx).Omit("Members", "Children", "Photos").Create(family).Error)
}

func (r *familyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).First(&family, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &family, nil
}

// FindDetailed loads a family with its members (and their users), children and
// the most recent photos.
func (r *familyRepo) FindDetailed(ctx context.Context, id uuid.UUID, recentPhotos int) (*models.Family, error) {
	var family models.Family
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("birth_date ASC") }).
		First(&family, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}

	if recentPhotos > 0 {
		var photos []models.Photo
		err := r.db.WithContext(ctx).
			Scopes(tenant.ForFamily(id)).
			Preload("UploadedBy").
			Order("created_at DESC").
			Limit(recentPhotos).
			Find(&photos).Error
		if err != nil {
			return nil, err
		}
		family.Photos = photos
	}
	return &family, nil
}

func (r *familyRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Family, error) {
	var families []models.Family
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.FamilyMember{}).Select("family_id").Where("user_id = ?", userID)).
		Preload("Members.User").
		Preload("Children").
		Order("created_at ASC").
		Find(&families).Error
	return families, err
}

func (r *familyRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Family{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a family and every row it owns. Callers wanting atomicity run
// it inside Store.Transaction.
func (r *familyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	owned := []interface{}{&models.Photo{}, &models.Child{}, &models.FamilyInvite{}, &models.FamilyMember{}}
	for _, model := range owned {
		if err := db.Scopes(tenant.ForFamily(id)).Delete(model).Error; err != nil {
			return err
		}
	}

	result := db.Delete(&models.Family{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *familyRepo) FindMember(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error) {
	var member models.FamilyMember
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForFamily(familyID)).
		Where("user_id = ?", userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *familyRepo) CreateMember(ctx context.Context, member *models.FamilyMember) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(member).Error)
}
