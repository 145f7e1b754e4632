package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFamilyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateFamilyRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// FamilyPreview is what non-members may see about a family.
type FamilyPreview struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateChildRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateChildRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	BirthDate *string `json:"birth_date"`
	Gender    *string `json:"gender"`
	Notes     *string `json:"notes"`
}
