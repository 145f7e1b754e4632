package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/google/uuid"
)

type CreateInviteRequest struct {
	FamilyID     uuid.UUID `json:"family_id"`
	Email        string    `json:"email,omitempty"`
	Relationship string    `json:"relationship,omitempty"`
}

type FamilyRefRequest struct {
	FamilyID uuid.UUID `json:"family_id"`
}

// AcceptInviteRequest is the body shared by every accept or join endpoint.
// Code, InviteCode and Token are only read by the join endpoints.
type AcceptInviteRequest struct {
	Code         string        `json:"code,omitempty"`
	InviteCode   string        `json:"invite_code,omitempty"`
	Token        string        `json:"token,omitempty"`
	Relationship string        `json:"relationship,omitempty"`
	Profile      *ProfileInput `json:"profile,omitempty"`
}

type InviteResponse struct {
	ID           uuid.UUID         `json:"id"`
	FamilyID     uuid.UUID         `json:"family_id"`
	Kind         models.InviteKind `json:"kind"`
	Code         string            `json:"code,omitempty"`
	InviteLink   string            `json:"invite_link"`
	Email        string            `json:"email,omitempty"`
	Relationship string            `json:"relationship,omitempty"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

type InvitedBy struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InviteSummary is the read-only view returned when checking a code.
type InviteSummary struct {
	Code         string            `json:"code"`
	Kind         models.InviteKind `json:"kind"`
	Relationship string            `json:"relationship,omitempty"`
	Family       FamilyPreview     `json:"family"`
	InvitedBy    *InvitedBy        `json:"invited_by,omitempty"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

type InviteFamilyPreview struct {
	FamilyPreview
	InvitedBy *InvitedBy `json:"invited_by,omitempty"`
}

// MembershipResponse is returned after a successful accept or join.
type MembershipResponse struct {
	Member  models.FamilyMember `json:"member"`
	Family  FamilyPreview       `json:"family"`
	Profile *models.User        `json:"profile"`
}
