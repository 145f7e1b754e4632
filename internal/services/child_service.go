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

type ChildService struct {
	children repository.ChildStore
	gate     *MembershipGate
	now      func() time.Time
}

func NewChildService(children repository.ChildStore, gate *MembershipGate) *ChildService {
	return &ChildService{children: children, gate: gate, now: time.Now}
}

func (s *ChildService) Create(ctx context.Context, actorID, familyID uuid.UUID, req *dto.CreateChildRequest) (*models.Child, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	child := &models.Child{
		FamilyID:  familyID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Gender:    strings.TrimSpace(req.Gender),
		Notes:     strings.TrimSpace(req.Notes),
	}
	if err := validation.Name("first_name", child.FirstName); err != nil {
		return nil, err
	}
	if err := validation.Name("last_name", child.LastName); err != nil {
		return nil, err
	}
	birthDate, err := validation.BirthDate("birth_date", strings.TrimSpace(req.BirthDate), s.now())
	if err != nil {
		return nil, err
	}
	child.BirthDate = birthDate
	if err := validation.ChildGender(child.Gender); err != nil {
		return nil, err
	}
	if err := validation.MaxLength("notes", child.Notes, 500); err != nil {
		return nil, err
	}

	if err := s.children.Create(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *ChildService) List(ctx context.Context, actorID, familyID uuid.UUID) ([]models.Child, error) {
	if _, err := s.gate.RequireMember(ctx, actorID, familyID); err != nil {
		return nil, err
	}
	return s.children.List(ctx, familyID)
}

func (s *ChildService) Get(ctx context.Context, actorID, familyID, childID uuid.UUID) (*models.Child, error) {
	if _, err := s.gate.RequireMember(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	child, err := s.children.FindByID(ctx, familyID, childID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChildNotFound
	}
	return child, err
}

func (s *ChildService) Update(ctx context.Context, actorID, familyID, childID uuid.UUID, req *dto.UpdateChildRequest) (*models.Child, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		v := strings.TrimSpace(*req.FirstName)
		if err := validation.Name("first_name", v); err != nil {
			return nil, err
		}
		fields["first_name"] = v
	}
	if req.LastName != nil {
		v := strings.TrimSpace(*req.LastName)
		if err := validation.Name("last_name", v); err != nil {
			return nil, err
		}
		fields["last_name"] = v
	}
	if req.BirthDate != nil {
		d, err := validation.BirthDate("birth_date", strings.TrimSpace(*req.BirthDate), s.now())
		if err != nil {
			return nil, err
		}
		fields["birth_date"] = d
	}
	if req.Gender != nil {
		v := strings.TrimSpace(*req.Gender)
		if err := validation.ChildGender(v); err != nil {
			return nil, err
		}
		fields["gender"] = v
	}
	if req.Notes != nil {
		v := strings.TrimSpace(*req.Notes)
		if err := validation.MaxLength("notes", v, 500); err != nil {
			return nil, err
		}
		fields["notes"] = v
	}

	if err := s.children.Update(ctx, familyID, childID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, err
	}
	return s.Get(ctx, actorID, familyID, childID)
}

func (s *ChildService) Delete(ctx context.Context, actorID, familyID, childID uuid.UUID) error {
	if _, err := s.gate.RequireAdmin(ctx, actorID, familyID); err != nil {
		return err
	}

	err := s.children.Delete(ctx, familyID, childID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrChildNotFound
	}
	return err
}
