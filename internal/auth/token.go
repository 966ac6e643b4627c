package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"infra-catalog/internal/domain"
)

// TokenPair is a matched access/refresh token issued together. Pairs are
// never persisted; validity is reconstructed from signature and embedded
// expiry alone.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenService issues and verifies HS256-signed token pairs. Verification
// performs no I/O: only the signature check and timestamp comparison.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Generate mints a fresh pair for the user. A signing failure is an
// infrastructure fault, never a client error.
func (s *TokenService) Generate(user *domain.AuthUser) (TokenPair, error) {
	return s.generate(user.ID)
}

// Verify checks the access token and returns the embedded user id.
func (s *TokenService) Verify(accessToken string) (string, error) {
	return s.parse(accessToken)
}

// Refresh verifies the refresh token and re-signs a fresh pair.
func (s *TokenService) Refresh(refreshToken string) (TokenPair, error) {
	userID, err := s.parse(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return s.generate(userID)
}

func (s *TokenService) generate(userID string) (TokenPair, error) {
	issued := s.now().UTC()
	accessExpires := issued.Add(s.accessTTL)
	refreshExpires := issued.Add(s.refreshTTL)

	access, err := s.sign(userID, issued, accessExpires)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(userID, issued, refreshExpires)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExpires,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

func (s *TokenService) sign(subject string, issued, expires time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
