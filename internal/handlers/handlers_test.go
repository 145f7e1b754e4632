package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", &validation.Error{Field: "name", Message: "name is required"}, 400, "name is required"},
		{"relationship", services.ErrRelationshipRequired, 400, "please state your relationship to the family"},
		{"conflict", services.ErrInviteUsed, 400, "invitation has already been used"},
		{"expired", services.ErrInviteExpired, 400, "invitation has expired"},
		{"unauthorized", services.ErrInvalidCredentials, 401, "invalid email or password"},
		{"forbidden", services.ErrNotAdmin, 403, "only family admins can do this"},
		{"not found", services.ErrInviteNotFound, 404, "invitation not found"},
		{"internal", errors.New("connection reset by peer"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body dto.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != dto.StatusError || body.Message != tt.wantMessage {
				t.Errorf("body = %+v, want message %q", body, tt.wantMessage)
			}
		})
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return db, mock
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		pingOK bool
		wantDB string
	}{
		{"healthy", true, "ok"},
		{"database down", false, "unhealthy: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			ping := mock.ExpectPing()
			if !tt.pingOK {
				ping.WillReturnError(errors.New("connection refused"))
			}

			app := fiber.New()
			app.Get("/api/health", NewHealthHandler(db).Check)

			resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}
			var body dto.HealthResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != "ok" || body.DB != tt.wantDB {
				t.Errorf("body = %+v, want db %q", body, tt.wantDB)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}
