package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

// GuestStrategy mints a fresh ephemeral user on every login. The payload
// must opt in explicitly with isGuest=true; there is no registration path.
type GuestStrategy struct {
	users repository.UserRepository
}

func NewGuestStrategy(users repository.UserRepository) *GuestStrategy {
	return &GuestStrategy{users: users}
}

func (s *GuestStrategy) Method() string { return MethodGuest }

func (s *GuestStrategy) Login(ctx context.Context, payload Payload) (Resolution, error) {
	if !payload.IsGuest {
		return Resolution{}, ErrGuestFlagRequired
	}

	id := uuid.NewString()
	email, err := domain.ParseEmail(fmt.Sprintf("guest-%s@guest.local", id))
	if err != nil {
		return Resolution{}, fmt.Errorf("synthesize guest email: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = "Guest"
	}

	user := domain.AuthUser{
		ID:       id,
		Email:    email,
		Name:     name,
		IsGuest:  true,
		Provider: domain.ProviderGuest,
	}
	if err := s.users.Create(ctx, &user, ""); err != nil {
		return Resolution{}, fmt.Errorf("create guest: %w", err)
	}
	return Resolution{User: user}, nil
}

func (s *GuestStrategy) Register(ctx context.Context, payload Payload) (Resolution, error) {
	return Resolution{}, ErrUnsupportedAuthMethod
}
