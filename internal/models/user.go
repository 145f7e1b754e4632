package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User holds credentials and the profile fields shown to other family members.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `gorm:"size:50;not null" json:"first_name"`
	LastName         string     `gorm:"size:50;not null" json:"last_name"`
	EmailVerified    bool       `gorm:"default:false" json:"email_verified"`
	ResetTokenHash   *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	Gender           string     `gorm:"size:20" json:"gender,omitempty"`
	Location         string     `gorm:"size:255" json:"location,omitempty"`
	Bio              string     `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UserSummary is the public slice of a user embedded in family payloads.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}
