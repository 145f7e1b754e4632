package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/google/uuid"
)

type membershipKey struct{}

// WithMembership returns a context carrying an already resolved membership so
// later gate checks for the same family and user skip the lookup.
func WithMembership(ctx context.Context, m *models.FamilyMember) context.Context {
	return context.WithValue(ctx, membershipKey{}, m)
}

// MembershipGate answers the two authorization questions every family
// scoped operation asks.
type MembershipGate struct {
	families repository.FamilyStore
}

func NewMembershipGate(families repository.FamilyStore) *MembershipGate {
	return &MembershipGate{families: families}
}

func (g *MembershipGate) find(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMember, error) {
	if m, ok := ctx.Value(membershipKey{}).(*models.FamilyMember); ok && m != nil &&
		m.FamilyID == familyID && m.UserID == userID {
		return m, nil
	}
	return g.families.FindMember(ctx, familyID, userID)
}

// RequireMember returns the caller's membership row or ErrNotMember.
func (g *MembershipGate) RequireMember(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMember, error) {
	member, err := g.find(ctx, userID, familyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RequireAdmin is RequireMember plus a role check.
func (g *MembershipGate) RequireAdmin(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMember, error) {
	member, err := g.find(ctx, userID, familyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return member, nil
}
