package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/google/uuid"
)

// recordingMailer keeps every message instead of sending it.
type recordingMailer struct {
	mu            sync.Mutex
	invitations   []InvitationEmail
	invitedTo     []string
	verifications []string
	resets        []string
}

func (m *recordingMailer) SendInvitation(ctx context.Context, to string, msg InvitationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitedTo = append(m.invitedTo, to)
	m.invitations = append(m.invitations, msg)
	return nil
}

func (m *recordingMailer) SendVerification(ctx context.Context, to, name, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, link)
	return nil
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, link)
	return nil
}

type testEnv struct {
	cfg      *config.Config
	store    *repository.GormStore
	mailer   *recordingMailer
	gate     *MembershipGate
	storage  *media.LocalStorage
	auth     *AuthService
	users    *UserService
	families *FamilyService
	invites  *InviteService
	children *ChildService
	photos   *PhotoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DBDriver:          "sqlite",
		DBName:            ":memory:",
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   15 * time.Minute,
		JWTRefreshExpiry:  time.Hour,
		VerifyTokenExpiry: 24 * time.Hour,
		ResetTokenExpiry:  time.Hour,
		InviteTTL:         7 * 24 * time.Hour,
		FrontendURL:       "http://localhost:5000",
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	storage, err := media.NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	store := repository.NewGormStore(db)
	mailer := &recordingMailer{}
	gate := NewMembershipGate(store.Families())

	return &testEnv{
		cfg:      cfg,
		store:    store,
		mailer:   mailer,
		gate:     gate,
		storage:  storage,
		auth:     NewAuthService(store.Users(), cfg, mailer),
		users:    NewUserService(store.Users()),
		families: NewFamilyService(store, gate, storage),
		invites:  NewInviteService(store, gate, mailer, cfg),
		children: NewChildService(store.Children(), gate),
		photos:   NewPhotoService(store.Photos(), gate, media.NewProcessor(0), storage),
	}
}

func (e *testEnv) user(t *testing.T, email, first string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", FirstName: first, LastName: "Smith"}
	if err := e.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) family(t *testing.T, owner *models.User, name string) *models.Family {
	t.Helper()
	f, err := e.families.Create(context.Background(), owner.ID, &dto.CreateFamilyRequest{Name: name})
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return f
}

// fixedCodes makes the invite service hand out the given codes in order.
func fixedCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

// join puts user into the family as a plain member through a fresh generic code.
func (e *testEnv) join(t *testing.T, admin, user *models.User, familyID uuid.UUID, relationship string) {
	t.Helper()
	ctx := context.Background()
	inv, err := e.invites.CreateInviteCode(ctx, admin.ID, familyID)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if _, err := e.invites.AcceptInvite(ctx, inv.Code, user.ID, &dto.AcceptInviteRequest{Relationship: relationship}); err != nil {
		t.Fatalf("accept invite: %v", err)
	}
}
