package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Photo struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID     uuid.UUID `gorm:"type:uuid;not null;index" json:"family_id"`
	UploadedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"uploaded_by_id"`
	Title        string    `gorm:"size:255" json:"title"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	StorageKey   string    `gorm:"size:512;not null" json:"-"`
	ThumbnailKey string    `gorm:"size:512;not null" json:"-"`
	URL          string    `gorm:"type:text;not null" json:"url"`
	ThumbnailURL string    `gorm:"type:text;not null" json:"thumbnail_url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	FileSize     int64     `json:"file_size"`
	FileType     string    `gorm:"size:50" json:"file_type"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UploadedBy   *User     `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
