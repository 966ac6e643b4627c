package auth

import (
	"context"
	"errors"
	"fmt"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

// Session is the result of a successful authentication: the resolved user,
// whether it pre-existed this request, and a fresh token pair.
type Session struct {
	User     domain.AuthUser
	Existing bool
	Tokens   TokenPair
}

// Service composes the strategy registry, token service, and user
// repository into the login, register, check, and refresh use cases.
type Service struct {
	registry *Registry
	tokens   *TokenService
	users    repository.UserRepository
}

func NewService(registry *Registry, tokens *TokenService, users repository.UserRepository) *Service {
	return &Service{registry: registry, tokens: tokens, users: users}
}

// Login dispatches to the strategy for the method and issues a token pair.
func (s *Service) Login(ctx context.Context, method string, payload Payload) (*Session, error) {
	strategy, err := s.registry.Resolve(method)
	if err != nil {
		return nil, err
	}
	resolution, err := strategy.Login(ctx, payload)
	if err != nil {
		return nil, err
	}
	return s.issue(resolution)
}

// Register creates the user through the strategy, then performs a full
// login with the same payload. The two steps are sequential, not
// transactional: if the login fails the user row remains and the caller can
// log in again.
func (s *Service) Register(ctx context.Context, method string, payload Payload) (*Session, error) {
	strategy, err := s.registry.Resolve(method)
	if err != nil {
		return nil, err
	}
	resolution, err := strategy.Register(ctx, payload)
	if err != nil {
		return nil, err
	}

	session, err := s.Login(ctx, method, payload)
	if err != nil {
		return nil, err
	}
	session.Existing = resolution.Existing
	return session, nil
}

// CheckAuth re-resolves the user behind a pre-verified access token and
// reissues a fresh pair. The user may have been deleted since issuance.
func (s *Service) CheckAuth(ctx context.Context, userID string) (*Session, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return s.issue(Resolution{User: *user, Existing: true})
}

// RefreshToken verifies the refresh token, confirms the user still exists,
// and re-signs a pair. Every failure on this path is normalized to
// ErrInvalidToken; callers cannot distinguish a bad token from a deleted
// user.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.tokens.parse(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	pair, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	return pair, nil
}

// VerifyAccess checks an access token and returns the embedded user id.
// Used by the transport layer to gate protected routes.
func (s *Service) VerifyAccess(accessToken string) (string, error) {
	return s.tokens.Verify(accessToken)
}

func (s *Service) issue(resolution Resolution) (*Session, error) {
	pair, err := s.tokens.Generate(&resolution.User)
	if err != nil {
		return nil, err
	}
	return &Session{
		User:     resolution.User,
		Existing: resolution.Existing,
		Tokens:   pair,
	}, nil
}
