package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"infra-catalog/internal/apperrors"
	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

// PhoneStrategy authenticates with a normalized phone number. Registration
// stores the hashed one-time code as the credential of record; delivery of
// that code is outside this system.
type PhoneStrategy struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewPhoneStrategy(users repository.UserRepository, hasher PasswordHasher) *PhoneStrategy {
	return &PhoneStrategy{users: users, hasher: hasher}
}

func (s *PhoneStrategy) Method() string { return MethodPhone }

func (s *PhoneStrategy) Login(ctx context.Context, payload Payload) (Resolution, error) {
	phone, err := s.parsePhone(payload.Phone)
	if err != nil {
		return Resolution{}, err
	}

	user, err := s.users.FindByPhone(ctx, phone.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Resolution{}, ErrUserNotFound
		}
		return Resolution{}, fmt.Errorf("lookup phone: %w", err)
	}
	return Resolution{User: *user, Existing: true}, nil
}

func (s *PhoneStrategy) Register(ctx context.Context, payload Payload) (Resolution, error) {
	phone, err := s.parsePhone(payload.Phone)
	if err != nil {
		return Resolution{}, err
	}
	if payload.Code == "" {
		return Resolution{}, apperrors.Validation("code", "one-time code is required")
	}

	if _, err := s.users.FindByPhone(ctx, phone.String()); err == nil {
		return Resolution{}, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Resolution{}, fmt.Errorf("check existing phone: %w", err)
	}

	hash, err := s.hasher.Hash(payload.Code)
	if err != nil {
		return Resolution{}, err
	}

	user := domain.AuthUser{
		ID:       uuid.NewString(),
		Name:     payload.Name,
		Provider: domain.ProviderPhone,
		Phone:    phone,
	}
	if err := s.users.Create(ctx, &user, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Resolution{}, apperrors.Wrap(ErrUserAlreadyExists, err)
		}
		return Resolution{}, fmt.Errorf("create user: %w", err)
	}
	return Resolution{User: user}, nil
}

func (s *PhoneStrategy) parsePhone(raw string) (domain.Phone, error) {
	phone, err := domain.ParsePhone(raw)
	if err != nil {
		return domain.Phone{}, ErrInvalidPhoneNumber
	}
	return phone, nil
}
