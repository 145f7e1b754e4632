package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/google/uuid"
)

const (
	inviteCodeLength = 6
	// Letters and digits without the easily confused 0/O and 1/I. 32 symbols
	// so a random byte maps onto it without bias.
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteTokenBytes   = 32
	maxInviteAttempts  = 5
)

// InviteService creates invitations and turns them into family memberships.
type InviteService struct {
	store  repository.Store
	gate   *MembershipGate
	mailer Mailer
	cfg    *config.Config

	now      func() time.Time
	newCode  func() (string, error)
	newToken func() (string, error)
}

func NewInviteService(store repository.Store, gate *MembershipGate, mailer Mailer, cfg *config.Config) *InviteService {
	return &InviteService{
		store:    store,
		gate:     gate,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
		newCode:  generateInviteCode,
		newToken: generateInviteToken,
	}
}

// CreateInvite issues a code invite. With an e-mail it is targeted at that
// person and the relationship chosen here is the one they will join with.
func (s *InviteService) CreateInvite(ctx context.Context, actorID uuid.UUID, req *dto.CreateInviteRequest) (*dto.InviteResponse, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, req.FamilyID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	relationship := strings.TrimSpace(req.Relationship)

	invite := &models.FamilyInvite{
		FamilyID:     req.FamilyID,
		Kind:         models.InviteGeneric,
		Relationship: relationship,
		CreatedByID:  actorID,
		ExpiresAt:    s.now().Add(s.cfg.InviteTTL),
	}
	if email != "" {
		if err := validation.Email(email); err != nil {
			return nil, err
		}
		invite.Kind = models.InviteTargeted
		invite.Email = email
	}
	if err := validation.MaxLength("relationship", relationship, 100); err != nil {
		return nil, err
	}

	if err := s.insert(ctx, invite, s.assignCode); err != nil {
		return nil, err
	}

	if invite.IsTargeted() {
		s.sendInvitation(ctx, actorID, invite)
	}

	return s.toResponse(invite), nil
}

// CreateInviteCode issues a generic code invite.
func (s *InviteService) CreateInviteCode(ctx context.Context, actorID, familyID uuid.UUID) (*dto.InviteResponse, error) {
	return s.CreateInvite(ctx, actorID, &dto.CreateInviteRequest{FamilyID: familyID})
}

// CreateInviteLink issues a generic invite redeemable through a long token.
func (s *InviteService) CreateInviteLink(ctx context.Context, actorID, familyID uuid.UUID) (*dto.InviteResponse, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	invite := &models.FamilyInvite{
		FamilyID:    familyID,
		Kind:        models.InviteGeneric,
		CreatedByID: actorID,
		ExpiresAt:   s.now().Add(s.cfg.InviteTTL),
	}
	if err := s.insert(ctx, invite, s.assignToken); err != nil {
		return nil, err
	}
	return s.toResponse(invite), nil
}

// insert stores the invite, drawing a fresh identifier whenever the store
// reports a unique key collision.
func (s *InviteService) insert(ctx context.Context, invite *models.FamilyInvite, assign func(*models.FamilyInvite) error) error {
	for attempt := 1; attempt <= maxInviteAttempts; attempt++ {
		if err := assign(invite); err != nil {
			return err
		}

		err := s.store.Invites().Create(ctx, invite)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("failed to create invite: %w", err)
		}
		slog.Warn("invite identifier collision, retrying", "family_id", invite.FamilyID.String(), "attempt", attempt)
	}
	return fmt.Errorf("failed to allocate a unique invite identifier after %d attempts", maxInviteAttempts)
}

func (s *InviteService) assignCode(invite *models.FamilyInvite) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	invite.Code = &code
	return nil
}

func (s *InviteService) assignToken(invite *models.FamilyInvite) error {
	token, err := s.newToken()
	if err != nil {
		return err
	}
	invite.Token = &token
	return nil
}

// CheckInvite describes a still redeemable invite.
func (s *InviteService) CheckInvite(ctx context.Context, code string) (*dto.InviteSummary, error) {
	invite, err := s.lookup(ctx, s.store, code, "")
	if err != nil {
		return nil, err
	}

	summary := &dto.InviteSummary{
		Code:         *invite.Code,
		Kind:         invite.Kind,
		Relationship: invite.Relationship,
		ExpiresAt:    invite.ExpiresAt,
		InvitedBy:    invitedBy(invite),
	}
	if invite.Family != nil {
		summary.Family = familyPreview(invite.Family)
	}
	return summary, nil
}

// FamilyByInviteCode returns the public preview of the family an invite leads to.
func (s *InviteService) FamilyByInviteCode(ctx context.Context, code string) (*dto.InviteFamilyPreview, error) {
	invite, err := s.lookup(ctx, s.store, code, "")
	if err != nil {
		return nil, err
	}
	if invite.Family == nil {
		return nil, ErrFamilyNotFound
	}
	return &dto.InviteFamilyPreview{
		FamilyPreview: familyPreview(invite.Family),
		InvitedBy:     invitedBy(invite),
	}, nil
}

// AcceptInvite redeems a code for the actor.
func (s *InviteService) AcceptInvite(ctx context.Context, code string, actorID uuid.UUID, req *dto.AcceptInviteRequest) (*dto.MembershipResponse, error) {
	return s.redeem(ctx, code, "", actorID, req)
}

// JoinByCode is AcceptInvite for the join endpoints.
func (s *InviteService) JoinByCode(ctx context.Context, code string, actorID uuid.UUID, req *dto.AcceptInviteRequest) (*dto.MembershipResponse, error) {
	return s.redeem(ctx, code, "", actorID, req)
}

// JoinByToken redeems a link invite.
func (s *InviteService) JoinByToken(ctx context.Context, token string, actorID uuid.UUID, req *dto.AcceptInviteRequest) (*dto.MembershipResponse, error) {
	return s.redeem(ctx, "", token, actorID, req)
}

// redeem runs every check and mutation inside one transaction. The accepted
// flag is flipped with a conditional update so two concurrent redemptions of
// the same invite cannot both succeed.
func (s *InviteService) redeem(ctx context.Context, code, token string, actorID uuid.UUID, req *dto.AcceptInviteRequest) (*dto.MembershipResponse, error) {
	if req == nil {
		req = &dto.AcceptInviteRequest{}
	}

	var profileFields map[string]interface{}
	if req.Profile != nil {
		fields, err := profileUpdates(req.Profile, s.now())
		if err != nil {
			return nil, err
		}
		profileFields = fields
	}

	var resp *dto.MembershipResponse
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		invite, err := s.lookup(ctx, tx, code, token)
		if err != nil {
			return err
		}

		if _, err := tx.Families().FindMember(ctx, invite.FamilyID, actorID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		relationship := resolveRelationship(invite, req.Relationship)
		if relationship == "" {
			return ErrRelationshipRequired
		}
		if err := validation.MaxLength("relationship", relationship, 100); err != nil {
			return err
		}

		user, err := tx.Users().FindByID(ctx, actorID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		err = tx.Invites().MarkAccepted(ctx, invite.ID, actorID, user.Email, now)
		if errors.Is(err, repository.ErrStaleUpdate) {
			return ErrInviteUsed
		}
		if err != nil {
			return err
		}

		member := &models.FamilyMember{
			FamilyID:     invite.FamilyID,
			UserID:       actorID,
			Role:         models.RoleMember,
			Relationship: relationship,
			JoinedAt:     now,
		}
		err = tx.Families().CreateMember(ctx, member)
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyMember
		}
		if err != nil {
			return err
		}

		if len(profileFields) > 0 {
			if err := tx.Users().Update(ctx, actorID, profileFields); err != nil {
				return err
			}
			if user, err = tx.Users().FindByID(ctx, actorID); err != nil {
				return err
			}
		}

		resp = &dto.MembershipResponse{Member: *member, Profile: user}
		if invite.Family != nil {
			resp.Family = familyPreview(invite.Family)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user joined family",
		"user_id", actorID.String(),
		"family_id", resp.Member.FamilyID.String(),
		"relationship", resp.Member.Relationship,
	)
	return resp, nil
}

// lookup finds an invite by code or token and rejects it if it can no longer
// be redeemed. Expiry is checked before use.
func (s *InviteService) lookup(ctx context.Context, store repository.Store, code, token string) (*models.FamilyInvite, error) {
	var (
		invite *models.FamilyInvite
		err    error
	)
	switch {
	case token != "":
		invite, err = store.Invites().FindByToken(ctx, token)
	case code != "":
		invite, err = store.Invites().FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	default:
		return nil, &validation.Error{Field: "code", Message: "invite code or token is required"}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}

	if invite.IsExpired(s.now()) {
		return nil, ErrInviteExpired
	}
	if invite.Accepted {
		return nil, ErrInviteUsed
	}
	return invite, nil
}

// resolveRelationship picks the relationship a new member joins with. A
// targeted invite carries the one chosen by the admin; a generic invite takes
// the one the joining user states.
func resolveRelationship(invite *models.FamilyInvite, supplied string) string {
	supplied = strings.TrimSpace(supplied)
	if invite.IsTargeted() && invite.Relationship != "" {
		return invite.Relationship
	}
	return supplied
}

// ListInvites returns the family's pending invites.
func (s *InviteService) ListInvites(ctx context.Context, actorID, familyID uuid.UUID) ([]dto.InviteResponse, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	invites, err := s.store.Invites().ListPending(ctx, familyID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	resp := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		resp = append(resp, *s.toResponse(&invites[i]))
	}
	return resp, nil
}

// RevokeInvite deletes an invite that nobody has accepted yet.
func (s *InviteService) RevokeInvite(ctx context.Context, actorID, inviteID uuid.UUID) error {
	invite, err := s.store.Invites().FindByID(ctx, inviteID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInviteNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.gate.RequireAdmin(ctx, actorID, invite.FamilyID); err != nil {
		return err
	}
	if invite.Accepted {
		return ErrInviteAccepted
	}

	err = s.store.Invites().DeleteUnaccepted(ctx, inviteID)
	if errors.Is(err, repository.ErrStaleUpdate) {
		return ErrInviteAccepted
	}
	return err
}

func (s *InviteService) sendInvitation(ctx context.Context, actorID uuid.UUID, invite *models.FamilyInvite) {
	if s.mailer == nil {
		return
	}

	msg := InvitationEmail{
		Code:      *invite.Code,
		Link:      s.inviteLink(invite),
		ExpiresAt: invite.ExpiresAt,
	}
	if family, err := s.store.Families().FindByID(ctx, invite.FamilyID); err == nil {
		msg.FamilyName = family.Name
	}
	if inviter, err := s.store.Users().FindByID(ctx, actorID); err == nil {
		msg.InviterName = strings.TrimSpace(inviter.FirstName + " " + inviter.LastName)
	}

	if err := s.mailer.SendInvitation(ctx, invite.Email, msg); err != nil {
		slog.Error("failed to send invitation email",
			"error", err,
			"family_id", invite.FamilyID.String(),
			"user_id", actorID.String(),
		)
	}
}

func (s *InviteService) inviteLink(invite *models.FamilyInvite) string {
	base := strings.TrimRight(s.cfg.FrontendURL, "/")
	if invite.Token != nil {
		return base + "/join?token=" + url.QueryEscape(*invite.Token)
	}
	if invite.Code != nil {
		return base + "/join-family?code=" + url.QueryEscape(*invite.Code)
	}
	return ""
}

func (s *InviteService) toResponse(invite *models.FamilyInvite) *dto.InviteResponse {
	resp := &dto.InviteResponse{
		ID:           invite.ID,
		FamilyID:     invite.FamilyID,
		Kind:         invite.Kind,
		InviteLink:   s.inviteLink(invite),
		Email:        invite.Email,
		Relationship: invite.Relationship,
		ExpiresAt:    invite.ExpiresAt,
	}
	if invite.Code != nil {
		resp.Code = *invite.Code
	}
	return resp
}

func familyPreview(f *models.Family) dto.FamilyPreview {
	return dto.FamilyPreview{ID: f.ID, Name: f.Name, Description: f.Description, CreatedAt: f.CreatedAt}
}

func invitedBy(invite *models.FamilyInvite) *dto.InvitedBy {
	if invite.CreatedBy == nil {
		return nil
	}
	return &dto.InvitedBy{FirstName: invite.CreatedBy.FirstName, LastName: invite.CreatedBy.LastName}
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

func generateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
