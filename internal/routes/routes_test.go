package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// envelope is the union of the success and error response shapes.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
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
		MaxUploadBytes:    1024 * 1024,
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
	mailer, err := services.NewEmailService(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	processor := media.NewProcessor(cfg.MaxUploadBytes)

	store := repository.NewGormStore(db)
	gate := services.NewMembershipGate(store.Families())

	app := fiber.New()
	Setup(app, cfg, store.Users(), gate, Handlers{
		Auth:   handlers.NewAuthHandler(services.NewAuthService(store.Users(), cfg, mailer)),
		Health: handlers.NewHealthHandler(db),
		User:   handlers.NewUserHandler(services.NewUserService(store.Users())),
		Family: handlers.NewFamilyHandler(
			services.NewFamilyService(store, gate, storage),
			services.NewChildService(store.Children(), gate),
		),
		Invite: handlers.NewInviteHandler(services.NewInviteService(store, gate, mailer, cfg)),
		Photo:  handlers.NewPhotoHandler(services.NewPhotoService(store.Photos(), gate, processor, storage), processor),
	})
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request, token string) (int, envelope) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, app, req, token)
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func register(t *testing.T, app *fiber.App, email, first string) string {
	t.Helper()

	status, env := doJSON(t, app, "POST", "/api/auth/register", "", dto.RegisterRequest{
		Email: email, Password: "Passw0rd!", FirstName: first, LastName: "Smith",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: status %d: %s", email, status, env.Message)
	}
	var auth dto.AuthResponse
	decode(t, env, &auth)
	return auth.AccessToken
}

func createFamily(t *testing.T, app *fiber.App, token, name string) models.Family {
	t.Helper()

	status, env := doJSON(t, app, "POST", "/api/families", token, dto.CreateFamilyRequest{Name: name})
	if status != fiber.StatusCreated {
		t.Fatalf("create family: status %d: %s", status, env.Message)
	}
	var family models.Family
	decode(t, env, &family)
	return family
}

func TestHealthIsPublic(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/families", "/api/users/profile"} {
		status, env := doJSON(t, app, "GET", path, "", nil)
		if status != fiber.StatusUnauthorized {
			t.Errorf("GET %s: status = %d, want 401", path, status)
		}
		if env.Status != dto.StatusError {
			t.Errorf("GET %s: envelope status = %q", path, env.Status)
		}
	}

	status, _ := doJSON(t, app, "GET", "/api/families", "not-a-jwt", nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", status)
	}
}

func TestInviteJoinFlow(t *testing.T) {
	app := newTestApp(t)

	adminToken := register(t, app, "anna@example.com", "Anna")
	family := createFamily(t, app, adminToken, "Smiths")

	status, env := doJSON(t, app, "POST", "/api/families/"+family.ID.String()+"/invite-code", adminToken, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("invite-code: status %d: %s", status, env.Message)
	}
	var invite dto.InviteResponse
	decode(t, env, &invite)
	if len(invite.Code) != 6 {
		t.Fatalf("invite code = %q, want 6 characters", invite.Code)
	}

	// Public preview, no token.
	status, env = doJSON(t, app, "GET", "/api/invites/check/"+invite.Code, "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("check: status %d: %s", status, env.Message)
	}
	var summary dto.InviteSummary
	decode(t, env, &summary)
	if summary.Family.Name != "Smiths" {
		t.Errorf("preview family = %q, want Smiths", summary.Family.Name)
	}

	joinerToken := register(t, app, "ben@example.com", "Ben")

	// Members-only before joining.
	status, _ = doJSON(t, app, "GET", "/api/families/"+family.ID.String(), joinerToken, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("non-member get family: status = %d, want 403", status)
	}

	status, env = doJSON(t, app, "POST", "/api/invites/join", joinerToken, dto.AcceptInviteRequest{
		InviteCode: invite.Code, Relationship: "cousin",
	})
	if status != fiber.StatusOK {
		t.Fatalf("join: status %d: %s", status, env.Message)
	}
	var membership dto.MembershipResponse
	decode(t, env, &membership)
	if membership.Member.Role != models.RoleMember || membership.Member.Relationship != "cousin" {
		t.Errorf("member = %+v, want member/cousin", membership.Member)
	}

	status, env = doJSON(t, app, "POST", "/api/invites/join", joinerToken, dto.AcceptInviteRequest{
		InviteCode: invite.Code, Relationship: "cousin",
	})
	if status != fiber.StatusBadRequest || env.Message != services.ErrInviteUsed.Error() {
		t.Errorf("second join: %d %q, want 400 %q", status, env.Message, services.ErrInviteUsed.Error())
	}

	status, _ = doJSON(t, app, "GET", "/api/families/"+family.ID.String(), joinerToken, nil)
	if status != fiber.StatusOK {
		t.Errorf("member get family: status = %d, want 200", status)
	}

	// Plain members cannot manage the family.
	status, _ = doJSON(t, app, "POST", "/api/families/"+family.ID.String()+"/invite-link", joinerToken, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("member invite-link: status = %d, want 403", status)
	}
}

func TestJoinRequiresCode(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "anna@example.com", "Anna")

	status, env := doJSON(t, app, "POST", "/api/families/join", token, dto.AcceptInviteRequest{Relationship: "aunt"})
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if env.Message != "code is required" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestInvalidFamilyID(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "anna@example.com", "Anna")

	status, _ := doJSON(t, app, "GET", "/api/families/not-a-uuid", token, nil)
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		img.Set(x, x%24, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPhotoUploadAndList(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "anna@example.com", "Anna")
	family := createFamily(t, app, token, "Smiths")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "beach day.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write(pngBytes(t))
	w.WriteField("title", "Beach")
	w.Close()

	req := httptest.NewRequest("POST", "/api/photos/"+family.ID.String()+"/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, env := send(t, app, req, token)
	if status != fiber.StatusCreated {
		t.Fatalf("upload: status %d: %s", status, env.Message)
	}
	var photo models.Photo
	decode(t, env, &photo)
	if photo.Title != "Beach" || photo.Width != 32 || photo.Height != 24 {
		t.Errorf("photo = %+v", photo)
	}

	status, env = doJSON(t, app, "GET", "/api/photos/"+family.ID.String(), token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: status %d: %s", status, env.Message)
	}
	var photos []models.Photo
	decode(t, env, &photos)
	if len(photos) != 1 {
		t.Errorf("listed %d photos, want 1", len(photos))
	}

	status, _ = doJSON(t, app, "DELETE", "/api/photos/"+photo.ID.String(), token, nil)
	if status != fiber.StatusOK {
		t.Errorf("delete: status = %d, want 200", status)
	}
}

func TestPhotoUploadRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "anna@example.com", "Anna")
	family := createFamily(t, app, token, "Smiths")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("photo", "notes.txt")
	part.Write([]byte("definitely not an image"))
	w.Close()

	req := httptest.NewRequest("POST", "/api/photos/"+family.ID.String()+"/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, env := send(t, app, req, token)
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d (%s), want 400", status, env.Message)
	}
}
