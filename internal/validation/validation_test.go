package validation

import (
	"errors"
	"testing"
	"time"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "test@example.com"},
		{name: "valid email with subdomain", email: "user@mail.example.com"},
		{name: "valid email with plus", email: "user+tag@example.com"},
		{name: "missing @", email: "testexample.com", wantErr: true},
		{name: "missing domain", email: "test@", wantErr: true},
		{name: "missing local part", email: "@example.com", wantErr: true},
		{name: "empty string", email: "", wantErr: true},
		{name: "spaces in email", email: "test @example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("Email(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "Secret123"},
		{name: "too short", password: "Ab1", wantErr: true},
		{name: "no upper case", password: "secret123", wantErr: true},
		{name: "no lower case", password: "SECRET123", wantErr: true},
		{name: "no digit", password: "SecretPass", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("Password(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid name", input: "Jo"},
		{name: "accented", input: "Zoé"},
		{name: "single letter", input: "J", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "too long", input: "Abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Name("first_name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Name(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestBirthDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "past date", input: "2019-05-04", want: time.Date(2019, 5, 4, 0, 0, 0, 0, time.UTC)},
		{name: "today", input: "2026-03-01", want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "future", input: "2026-03-02", wantErr: true},
		{name: "wrong format", input: "04/05/2019", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BirthDate("birth_date", tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BirthDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("BirthDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestChildGender(t *testing.T) {
	for _, g := range []string{"", "M", "F"} {
		if err := ChildGender(g); err != nil {
			t.Errorf("ChildGender(%q) = %v, want nil", g, err)
		}
	}
	if err := ChildGender("X"); err == nil {
		t.Error("ChildGender(X) should fail")
	}
}

func TestErrorIsInvalid(t *testing.T) {
	err := Required("relationship", "", 100)

	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("errors.Is(%v, ErrInvalid) = false", err)
	}
	var verr *Error
	if !errors.As(err, &verr) || verr.Field != "relationship" {
		t.Errorf("errors.As field = %+v, want relationship", verr)
	}
}
