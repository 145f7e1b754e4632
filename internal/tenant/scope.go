package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForFamily returns a GORM scope that filters by family_id. Every query on
// family-owned rows (children, photos, invites) goes through it.
func ForFamily(familyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("family_id = ?", familyID)
	}
}
