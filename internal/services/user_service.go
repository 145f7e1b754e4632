package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
	"github.com/google/uuid"
)

type UserService struct {
	users repository.UserStore
	now   func() time.Time
}

func NewUserService(users repository.UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	fields, err := profileUpdates(&req.ProfileInput, s.now())
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.FirstName); name != "" {
		if err := validation.Name("first_name", name); err != nil {
			return nil, err
		}
		fields["first_name"] = name
	}
	if name := strings.TrimSpace(req.LastName); name != "" {
		if err := validation.Name("last_name", name); err != nil {
			return nil, err
		}
		fields["last_name"] = name
	}

	if err := s.users.Update(ctx, userID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// profileUpdates validates the optional profile fields and returns the
// columns to update. Empty fields are skipped.
func profileUpdates(p *dto.ProfileInput, now time.Time) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if p.BirthDate != "" {
		d, err := validation.BirthDate("birth_date", p.BirthDate, now)
		if err != nil {
			return nil, err
		}
		fields["birth_date"] = d
	}

	optional := []struct {
		column string
		value  string
		max    int
	}{
		{"gender", p.Gender, 20},
		{"location", p.Location, 255},
		{"bio", p.Bio, 1000},
	}
	for _, f := range optional {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if err := validation.MaxLength(f.column, v, f.max); err != nil {
			return nil, err
		}
		fields[f.column] = v
	}

	return fields, nil
}
