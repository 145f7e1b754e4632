package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleUpdate is returned when a conditional update matched no row
	// because another writer changed it first.
	ErrStaleUpdate = errors.New("row changed concurrently")
)

// UserStore persists users, credentials and refresh tokens.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken returns ErrStaleUpdate when the token is unknown or
	// already revoked.
	RevokeRefreshToken(ctx context.Context, hash string) error
}

// FamilyStore persists families and their membership rows.
type FamilyStore interface {
	Create(ctx context.Context, family *models.Family) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Family, error)
	FindDetailed(ctx context.Context, id uuid.UUID, recentPhotos int) (*models.Family, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Family, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindMember(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error)
	CreateMember(ctx context.Context, member *models.FamilyMember) error
}

// InviteStore persists family invitations.
type InviteStore interface {
	Create(ctx context.Context, invite *models.FamilyInvite) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FamilyInvite, error)
	FindByCode(ctx context.Context, code string) (*models.FamilyInvite, error)
	FindByToken(ctx context.Context, token string) (*models.FamilyInvite, error)
	ListPending(ctx context.Context, familyID uuid.UUID, now time.Time) ([]models.FamilyInvite, error)
	// MarkAccepted flips accepted to true only if it is still false.
	MarkAccepted(ctx context.Context, id, userID uuid.UUID, email string, at time.Time) error
	// DeleteUnaccepted removes an invite that has not been accepted yet.
	DeleteUnaccepted(ctx context.Context, id uuid.UUID) error
}

type ChildStore interface {
	Create(ctx context.Context, child *models.Child) error
	FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Child, error)
	List(ctx context.Context, familyID uuid.UUID) ([]models.Child, error)
	Update(ctx context.Context, familyID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, familyID, id uuid.UUID) error
}

type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	List(ctx context.Context, familyID uuid.UUID) ([]models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store groups the stores and runs work in a transaction. Stores obtained
// from the tx argument share the transaction.
type Store interface {
	Users() UserStore
	Families() FamilyStore
	Invites() InviteStore
	Children() ChildStore
	Photos() PhotoStore
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserStore      { return &userRepo{db: s.db} }
func (s *GormStore) Families() FamilyStore { return &familyRepo{db: s.db} }
func (s *GormStore) Invites() InviteStore  { return &inviteRepo{db: s.db} }
func (s *GormStore) Children() ChildStore  { return &childRepo{db: s.db} }
func (s *GormStore) Photos() PhotoStore    { return &photoRepo{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

// translate maps driver and GORM errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
