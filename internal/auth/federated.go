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

// FederatedIdentity is what the external identity provider attests for a
// verified ID token.
type FederatedIdentity struct {
	UID   string
	Email string
	Name  string
}

// IDTokenVerifier verifies a third-party ID token with the identity
// provider. Implementations return ErrInvalidIDToken for rejected tokens
// and a plain error for provider outages.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedIdentity, error)
}

// FederatedStrategy authenticates with an identity-provider ID token.
// Federated users have no local password; their stored hash is empty.
type FederatedStrategy struct {
	users    repository.UserRepository
	verifier IDTokenVerifier
}

func NewFederatedStrategy(users repository.UserRepository, verifier IDTokenVerifier) *FederatedStrategy {
	return &FederatedStrategy{users: users, verifier: verifier}
}

func (s *FederatedStrategy) Method() string { return MethodFirebase }

// Login requires an existing local user for the attested email.
func (s *FederatedStrategy) Login(ctx context.Context, payload Payload) (Resolution, error) {
	identity, err := s.verify(ctx, payload.IDToken)
	if err != nil {
		return Resolution{}, err
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Resolution{}, ErrUserNotFound
		}
		return Resolution{}, fmt.Errorf("lookup user: %w", err)
	}
	return Resolution{User: *user, Existing: true}, nil
}

// Register requires the opposite: no local user for the attested email.
func (s *FederatedStrategy) Register(ctx context.Context, payload Payload) (Resolution, error) {
	identity, err := s.verify(ctx, payload.IDToken)
	if err != nil {
		return Resolution{}, err
	}

	if _, err := s.users.FindByEmail(ctx, identity.Email); err == nil {
		return Resolution{}, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Resolution{}, fmt.Errorf("check existing email: %w", err)
	}

	email, err := domain.ParseEmail(identity.Email)
	if err != nil {
		return Resolution{}, ErrInvalidIDToken
	}

	user := domain.AuthUser{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     identity.Name,
		Provider: domain.ProviderFirebase,
	}
	if err := s.users.Create(ctx, &user, ""); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Resolution{}, apperrors.Wrap(ErrUserAlreadyExists, err)
		}
		return Resolution{}, fmt.Errorf("create user: %w", err)
	}
	return Resolution{User: user}, nil
}

func (s *FederatedStrategy) verify(ctx context.Context, idToken string) (*FederatedIdentity, error) {
	if s.verifier == nil {
		return nil, errors.New("identity verifier is not configured")
	}
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if identity.Email == "" {
		return nil, ErrInvalidIDToken
	}
	return identity, nil
}
