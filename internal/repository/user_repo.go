package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("reset_token_hash = ?", hash).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *userRepo) FindRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ? AND revoked = ?", hash, false).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// RevokeRefreshToken flips revoked only while it is still false, so of two
// concurrent rotations of the same token exactly one succeeds.
func (r *userRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Update("revoked", true)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}
