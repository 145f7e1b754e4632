package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteKind tells a targeted invite (issued for a known e-mail with a
// relationship chosen by the admin) from a generic code or link that anyone
// can redeem by stating their own relationship.
type InviteKind string

const (
	InviteTargeted InviteKind = "targeted"
	InviteGeneric  InviteKind = "generic"
)

type FamilyInvite struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"family_id"`
	Kind         InviteKind `gorm:"size:20;not null" json:"kind"`
	Code         *string    `gorm:"size:8;uniqueIndex" json:"code,omitempty"`
	Token        *string    `gorm:"size:64;uniqueIndex" json:"-"`
	Email        string     `gorm:"size:255" json:"email,omitempty"`
	Relationship string     `gorm:"size:100" json:"relationship,omitempty"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expires_at"`
	Accepted     bool       `gorm:"not null;default:false" json:"accepted"`
	AcceptedByID *uuid.UUID `gorm:"type:uuid" json:"accepted_by_id,omitempty"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Family       *Family    `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"family,omitempty"`
	CreatedBy    *User      `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (i *FamilyInvite) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// IsExpired reports whether the invite expired before now. An invite whose
// expiry equals now is still valid.
func (i *FamilyInvite) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

func (i *FamilyInvite) IsTargeted() bool {
	return i.Kind == InviteTargeted
}
