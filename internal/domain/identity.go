package domain

import (
	"strings"

	"infra-catalog/internal/apperrors"
)

// Email is a normalized email address. The zero value means "no email".
type Email struct {
	value string
}

// ParseEmail trims and lowercases the raw input and validates the result.
func ParseEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, apperrors.Validation("email", "email is required")
	}
	if !strings.Contains(normalized, "@") {
		return Email{}, apperrors.Validation("email", "email must contain @")
	}
	return Email{value: normalized}, nil
}

func (e Email) String() string { return e.value }

// IsZero reports whether no email was provided.
func (e Email) IsZero() bool { return e.value == "" }

// Phone is a normalized 10-digit phone number. The zero value means
// "no phone".
type Phone struct {
	value string
}

var phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// ParsePhone strips separators and validates the normalized length.
func ParsePhone(raw string) (Phone, error) {
	normalized := phoneStripper.Replace(strings.TrimSpace(raw))
	if len(normalized) != 10 {
		return Phone{}, apperrors.Validation("phone", "phone must normalize to 10 characters")
	}
	return Phone{value: normalized}, nil
}

// ParseOptionalPhone returns the zero phone for absent input, so callers can
// distinguish "not provided" from "malformed".
func ParseOptionalPhone(raw string) (Phone, error) {
	if strings.TrimSpace(raw) == "" {
		return Phone{}, nil
	}
	return ParsePhone(raw)
}

func (p Phone) String() string { return p.value }

// IsZero reports whether no phone was provided.
func (p Phone) IsZero() bool { return p.value == "" }

// Password is a validated raw password awaiting hashing. It is never
// persisted.
type Password struct {
	value string
}

// ParsePassword enforces the minimum length rule.
func ParsePassword(raw string) (Password, error) {
	if len(raw) < 6 {
		return Password{}, apperrors.Validation("password", "password must be at least 6 characters")
	}
	return Password{value: raw}, nil
}

func (p Password) String() string { return p.value }
