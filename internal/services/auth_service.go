package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
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
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const purposeVerifyEmail = "verify_email"

var ErrAlreadyVerified = newError(ErrConflict, "email already verified")

type AuthService struct {
	users  repository.UserStore
	cfg    *config.Config
	mailer Mailer
	now    func() time.Time
}

func NewAuthService(users repository.UserStore, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{users: users, cfg: cfg, mailer: mailer, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if err := validation.Password(req.Password); err != nil {
		return nil, err
	}
	if err := validation.Name("first_name", firstName); err != nil {
		return nil, err
	}
	if err := validation.Name("last_name", lastName); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendVerification(ctx, user)
	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	stored, err := s.users.FindRefreshToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.users.RevokeRefreshToken(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrStaleUpdate) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return s.generateTokenPair(ctx, user)
}

// Logout is idempotent: an unknown or already revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	err := s.users.RevokeRefreshToken(ctx, hashToken(req.RefreshToken))
	if errors.Is(err, repository.ErrStaleUpdate) {
		return nil
	}
	return err
}

// ForgotPassword mails a reset link when the address is known. It never
// reports whether the address exists.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Email(email); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rawToken, err := randomToken()
	if err != nil {
		return err
	}
	expiry := s.now().Add(s.cfg.ResetTokenExpiry)
	err = s.users.Update(ctx, user.ID, map[string]interface{}{
		"reset_token_hash":   hashToken(rawToken),
		"reset_token_expiry": expiry,
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.mailer != nil {
		link := s.frontendLink("/reset-password", rawToken)
		if err := s.mailer.SendPasswordReset(ctx, user.Email, user.FirstName, link); err != nil {
			slog.Error("failed to send password reset email", "error", err, "user_id", user.ID.String())
		}
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.Token == "" {
		return ErrInvalidToken
	}
	if err := validation.Password(req.Password); err != nil {
		return err
	}

	user, err := s.users.FindByResetTokenHash(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.Update(ctx, user.ID, map[string]interface{}{
		"password":           string(hash),
		"reset_token_hash":   nil,
		"reset_token_expiry": nil,
	})
}

// SendVerification mails a fresh verification link to the user.
func (s *AuthService) SendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}
	if s.mailer == nil {
		return nil
	}

	token, err := s.generateVerifyToken(user)
	if err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, user.Email, user.FirstName, s.frontendLink("/verify-email", token))
}

// VerifyEmail marks the user in a valid verification token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		return s.verifyKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != purposeVerifyEmail {
		return ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ErrInvalidToken
	}

	err = s.users.Update(ctx, userID, map[string]interface{}{"email_verified": true})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) {
	if s.mailer == nil {
		return
	}
	token, err := s.generateVerifyToken(user)
	if err == nil {
		err = s.mailer.SendVerification(ctx, user.Email, user.FirstName, s.frontendLink("/verify-email", token))
	}
	if err != nil {
		slog.Error("failed to send verification email", "error", err, "user_id", user.ID.String())
	}
}

func (s *AuthService) frontendLink(path, token string) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:            user.ID,
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			EmailVerified: user.EmailVerified,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// Verification tokens are signed with a key derived from the JWT secret so
// they are never accepted as access tokens.
func (s *AuthService) verifyKey() []byte {
	return []byte(s.cfg.JWTSecret + ":" + purposeVerifyEmail)
}

func (s *AuthService) generateVerifyToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":     user.ID.String(),
		"purpose": purposeVerifyEmail,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.VerifyTokenExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.verifyKey())
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.users.SaveRefreshToken(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
