package repository

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inviteRepo struct {
	db *gorm.DB
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.FamilyInvite) error {
	return translate(r.db.WithContext(ctx).Omit("Family", "CreatedBy").Create(invite).Error)
}

func (r *inviteRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Family").Preload("CreatedBy")
}

func (r *inviteRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FamilyInvite, error) {
	var invite models.FamilyInvite
	if err := r.withRelations(ctx).First(&invite, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *inviteRepo) FindByCode(ctx context.Context, code string) (*models.FamilyInvite, error) {
	var invite models.FamilyInvite
	if err := r.withRelations(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *inviteRepo) FindByToken(ctx context.Context, token string) (*models.FamilyInvite, error) {
	var invite models.FamilyInvite
	if err := r.withRelations(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *inviteRepo) ListPending(ctx context.Context, familyID uuid.UUID, now time.Time) ([]models.FamilyInvite, error) {
	var invites []models.FamilyInvite
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForFamily(familyID)).
		Where("accepted = ? AND expires_at >= ?", false, now).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (r *inviteRepo) MarkAccepted(ctx context.Context, id, userID uuid.UUID, email string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.FamilyInvite{}).
		Where("id = ? AND accepted = ?", id, false).
		Updates(map[string]interface{}{
			"accepted":       true,
			"email":          email,
			"accepted_by_id": userID,
			"accepted_at":    at,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

func (r *inviteRepo) DeleteUnaccepted(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND accepted = ?", id, false).Delete(&models.FamilyInvite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}
