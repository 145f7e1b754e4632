package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	// CreatorRelationship is recorded for the member who created the family.
	CreatorRelationship = "Creator"
)

type Family struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Members     []FamilyMember `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Children    []Child        `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"children,omitempty"`
	Photos      []Photo        `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

func (f *Family) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// FamilyMember links a user to a family. A user appears at most once per family.
type FamilyMember struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_family_members_family_user,priority:1" json:"family_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_family_members_family_user,priority:2;index" json:"user_id"`
	Role         string    `gorm:"size:20;not null;default:'member'" json:"role"`
	Relationship string    `gorm:"size:100" json:"relationship,omitempty"`
	JoinedAt     time.Time `gorm:"not null" json:"joined_at"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (m *FamilyMember) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

func (m *FamilyMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}
