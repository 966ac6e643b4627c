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

// EmailStrategy authenticates with a local email and password.
type EmailStrategy struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewEmailStrategy(users repository.UserRepository, hasher PasswordHasher) *EmailStrategy {
	return &EmailStrategy{users: users, hasher: hasher}
}

func (s *EmailStrategy) Method() string { return MethodEmail }

// Login verifies the presented password against the stored hash. Missing
// user and wrong password both collapse to ErrInvalidCredentials so the
// response never reveals which check failed.
func (s *EmailStrategy) Login(ctx context.Context, payload Payload) (Resolution, error) {
	email, err := domain.ParseEmail(payload.Email)
	if err != nil {
		return Resolution{}, err
	}

	hash, err := s.users.GetPasswordHashByEmail(ctx, email.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Resolution{}, ErrInvalidCredentials
		}
		return Resolution{}, fmt.Errorf("lookup password hash: %w", err)
	}
	if hash == "" || s.hasher.Verify(hash, payload.Password) != nil {
		return Resolution{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Resolution{}, ErrInvalidCredentials
		}
		return Resolution{}, fmt.Errorf("lookup user: %w", err)
	}
	return Resolution{User: *user, Existing: true}, nil
}

// Register creates a new email user. The pre-check is a fast path; the
// unique index on email is the real uniqueness guarantee, so a duplicate
// insert also reports ErrUserAlreadyExists.
func (s *EmailStrategy) Register(ctx context.Context, payload Payload) (Resolution, error) {
	email, err := domain.ParseEmail(payload.Email)
	if err != nil {
		return Resolution{}, err
	}
	password, err := domain.ParsePassword(payload.Password)
	if err != nil {
		return Resolution{}, err
	}

	if _, err := s.users.FindByEmail(ctx, email.String()); err == nil {
		return Resolution{}, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Resolution{}, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(password.String())
	if err != nil {
		return Resolution{}, err
	}

	user := domain.AuthUser{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     payload.Name,
		Provider: domain.ProviderEmail,
	}
	if err := s.users.Create(ctx, &user, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Resolution{}, apperrors.Wrap(ErrUserAlreadyExists, err)
		}
		return Resolution{}, fmt.Errorf("create user: %w", err)
	}
	return Resolution{User: user}, nil
}
