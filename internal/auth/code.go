package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"infra-catalog/internal/repository"
)

// CodeStrategy authenticates with a pre-provisioned activation code.
// Codes are issued out of band; there is no registration path.
type CodeStrategy struct {
	users repository.UserRepository
}

func NewCodeStrategy(users repository.UserRepository) *CodeStrategy {
	return &CodeStrategy{users: users}
}

func (s *CodeStrategy) Method() string { return MethodCode }

func (s *CodeStrategy) Login(ctx context.Context, payload Payload) (Resolution, error) {
	code := strings.TrimSpace(payload.Code)
	if code == "" {
		return Resolution{}, ErrInvalidActivationCode
	}

	user, err := s.users.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Resolution{}, ErrInvalidActivationCode
		}
		return Resolution{}, fmt.Errorf("lookup code: %w", err)
	}
	return Resolution{User: *user, Existing: true}, nil
}

func (s *CodeStrategy) Register(ctx context.Context, payload Payload) (Resolution, error) {
	return Resolution{}, ErrUnsupportedAuthMethod
}
