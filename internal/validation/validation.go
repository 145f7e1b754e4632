// Package validation checks user supplied input before it reaches the stores.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrInvalid is the class every validation Error belongs to.
var ErrInvalid = errors.New("validation failed")

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// DateLayout is the accepted format for birth dates.
const DateLayout = "2006-01-02"

// Error reports which field failed and why.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func fieldError(field, msg string) error {
	return &Error{Field: field, Message: msg}
}

// Email checks the address shape. The caller is expected to have trimmed it.
func Email(email string) error {
	if email == "" {
		return fieldError("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return fieldError("email", "invalid email format")
	}
	return nil
}

// Password requires at least 8 characters with an upper case letter, a lower
// case letter and a digit.
func Password(password string) error {
	if password == "" {
		return fieldError("password", "password is required")
	}
	if len(password) < 8 {
		return fieldError("password", "password must be at least 8 characters")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fieldError("password", "password must contain an upper case letter, a lower case letter and a digit")
	}
	return nil
}

// Name checks a person name is between 2 and 50 characters.
func Name(field, name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return fieldError(field, field+" is required")
	}
	if n < 2 || n > 50 {
		return fieldError(field, field+" must be between 2 and 50 characters")
	}
	return nil
}

// Required rejects blank values and values longer than max characters.
func Required(field, value string, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		return fieldError(field, field+" is required")
	}
	if max > 0 && n > max {
		return fieldError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

// MaxLength allows empty values.
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fieldError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

// BirthDate parses a YYYY-MM-DD date and rejects dates after now.
func BirthDate(field, value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, fieldError(field, field+" is required")
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fieldError(field, field+" must be a date in YYYY-MM-DD format")
	}
	if d.After(now) {
		return time.Time{}, fieldError(field, field+" cannot be in the future")
	}
	return d, nil
}

// ChildGender accepts "", "M" or "F".
func ChildGender(gender string) error {
	switch gender {
	case "", "M", "F":
		return nil
	default:
		return fieldError("gender", "gender must be M or F")
	}
}
