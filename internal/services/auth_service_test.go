package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return u.Query().Get("token")
}

func TestRegisterLoginRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email: "Ann@Example.com", Password: "Secret123", FirstName: "Ann", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ann@example.com" || reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Errorf("register response = %+v", reg)
	}
	if len(env.mailer.verifications) != 1 {
		t.Errorf("verification emails = %d, want 1", len(env.mailer.verifications))
	}

	token, err := jwt.Parse(reg.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(env.cfg.JWTSecret), nil })
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if sub, _ := token.Claims.(jwt.MapClaims)["sub"].(string); sub != reg.User.ID.String() {
		t.Errorf("sub = %q", sub)
	}

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{
		Email: "ann@example.com", Password: "Secret123", FirstName: "Ann", LastName: "Smith",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register err = %v, want ErrEmailTaken", err)
	}

	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "ann@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password err = %v", err)
	}
	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "ann@example.com", Password: "Secret123"}); err != nil {
		t.Errorf("Login: %v", err)
	}

	refreshed, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == reg.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused refresh token err = %v, want ErrInvalidToken", err)
	}

	if err := env.auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: refreshed.RefreshToken}); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: refreshed.RefreshToken}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("refresh after logout err = %v, want Unauthorized", err)
	}
}

// rotationBarrier holds every FindRefreshToken caller until all of them have
// read the token, so the revocations race.
type rotationBarrier struct {
	repository.UserStore
	arrived sync.WaitGroup
}

func (b *rotationBarrier) FindRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	token, err := b.UserStore.FindRefreshToken(ctx, hash)
	b.arrived.Done()
	b.arrived.Wait()
	return token, err
}

func TestConcurrentRefreshRotatesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email: "ann@example.com", Password: "Secret123", FirstName: "Ann", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	const callers = 2
	users := &rotationBarrier{UserStore: env.store.Users()}
	users.arrived.Add(callers)
	auth := NewAuthService(users, env.cfg, env.mailer)

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, ErrInvalidToken):
			t.Errorf("unexpected error %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("refresh token redeemed %d times, want 1 (errs=%v)", wins, errs)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email: "ann@example.com", Password: "Secret123", FirstName: "Ann", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := env.auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: reg.RefreshToken}); err != nil {
			t.Errorf("Logout #%d: %v", i+1, err)
		}
	}
	if err := env.auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: "never-issued"}); err != nil {
		t.Errorf("Logout with unknown token: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{name: "weak password", req: dto.RegisterRequest{Email: "a@example.com", Password: "password", FirstName: "Ann", LastName: "Smith"}},
		{name: "bad email", req: dto.RegisterRequest{Email: "nope", Password: "Secret123", FirstName: "Ann", LastName: "Smith"}},
		{name: "short last name", req: dto.RegisterRequest{Email: "a@example.com", Password: "Secret123", FirstName: "Ann", LastName: "S"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.auth.Register(context.Background(), &tt.req); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email: "ann@example.com", Password: "Secret123", FirstName: "Ann", LastName: "Smith",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := env.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "nobody@example.com"}); err != nil {
		t.Errorf("unknown address should not error, got %v", err)
	}
	if len(env.mailer.resets) != 0 {
		t.Fatalf("reset mail sent for unknown address")
	}

	if err := env.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ann@example.com"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(env.mailer.resets) != 1 {
		t.Fatalf("resets = %d, want 1", len(env.mailer.resets))
	}
	token := tokenFromLink(t, env.mailer.resets[0])

	if err := env.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "bogus", Password: "Newpass123"}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("bogus token err = %v", err)
	}

	env.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := env.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, Password: "Newpass123"}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token err = %v", err)
	}
	env.auth.now = time.Now

	if err := env.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, Password: "Newpass123"}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "ann@example.com", Password: "Newpass123"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if err := env.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, Password: "Other123x"}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reset token reused, err = %v", err)
	}
}

func TestEmailVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email: "ann@example.com", Password: "Secret123", FirstName: "Ann", LastName: "Smith",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token := tokenFromLink(t, env.mailer.verifications[0])

	if err := env.auth.VerifyEmail(ctx, reg.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token accepted for verification, err = %v", err)
	}
	if err := env.auth.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	user, err := env.users.GetProfile(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !user.EmailVerified {
		t.Error("email not marked verified")
	}
	if err := env.auth.SendVerification(ctx, reg.User.ID); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("SendVerification err = %v, want ErrAlreadyVerified", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a@example.com", "Ann")

	got, err := env.users.UpdateProfile(ctx, a.ID, &dto.UpdateProfileRequest{
		FirstName:    "Annie",
		ProfileInput: dto.ProfileInput{Bio: "gardener", BirthDate: "1985-07-09"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.FirstName != "Annie" || got.Bio != "gardener" || got.BirthDate == nil || got.LastName != "Smith" {
		t.Errorf("profile = %+v", got)
	}

	_, err = env.users.UpdateProfile(ctx, a.ID, &dto.UpdateProfileRequest{ProfileInput: dto.ProfileInput{BirthDate: "09/07/1985"}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("bad date err = %v, want ErrValidation", err)
	}
}
