package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Child struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"family_id"`
	FirstName string    `gorm:"size:50;not null" json:"first_name"`
	LastName  string    `gorm:"size:50;not null" json:"last_name"`
	BirthDate time.Time `gorm:"not null" json:"birth_date"`
	Gender    string    `gorm:"size:1" json:"gender,omitempty"`
	Notes     string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
