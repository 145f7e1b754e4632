package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/validation"
)

// Error classes. Handlers map them to HTTP statuses with errors.Is; every
// specific error below wraps exactly one class.
var (
	ErrValidation   = validation.ErrInvalid
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
)

var (
	ErrEmailTaken         = newError(ErrConflict, "email already registered")
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password")
	ErrInvalidToken       = newError(ErrUnauthorized, "invalid or expired token")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")

	ErrNotMember   = newError(ErrForbidden, "you are not a member of this family")
	ErrNotAdmin    = newError(ErrForbidden, "only family admins can do this")
	ErrNotUploader = newError(ErrForbidden, "only the uploader or a family admin can delete this photo")

	ErrFamilyNotFound = newError(ErrNotFound, "family not found")
	ErrChildNotFound  = newError(ErrNotFound, "child not found")
	ErrPhotoNotFound  = newError(ErrNotFound, "photo not found")

	ErrInviteNotFound = newError(ErrNotFound, "invitation not found")
	ErrInviteExpired  = newError(ErrExpired, "invitation has expired")
	ErrInviteUsed     = newError(ErrConflict, "invitation has already been used")
	ErrAlreadyMember  = newError(ErrConflict, "you are already a member of this family")
	ErrInviteAccepted = newError(ErrConflict, "accepted invitations cannot be revoked")

	ErrRelationshipRequired = &validation.Error{Field: "relationship", Message: "please state your relationship to the family"}
)

// Error is a failure with a message safe to show to the caller. It unwraps
// to its class.
type Error struct {
	class error
	msg   string
}

func newError(class error, msg string) *Error {
	return &Error{class: class, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.class }
