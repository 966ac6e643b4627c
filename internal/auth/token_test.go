package auth

import (
	"errors"
	"testing"
	"time"

	"infra-catalog/internal/domain"
)

func newTestTokenService(now func() time.Time) *TokenService {
	ts := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour)
	ts.now = now
	return ts
}

func TestTokenRoundTrip(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := newTestTokenService(func() time.Time { return base })

	user := &domain.AuthUser{ID: "user-42"}
	pair, err := ts.Generate(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be signed")
	}
	if !pair.AccessExpiresAt.Equal(base.Add(15 * time.Minute)) {
		t.Fatalf("access expiry = %v, want %v", pair.AccessExpiresAt, base.Add(15*time.Minute))
	}
	if !pair.RefreshExpiresAt.Equal(base.Add(720 * time.Hour)) {
		t.Fatalf("refresh expiry = %v, want %v", pair.RefreshExpiresAt, base.Add(720*time.Hour))
	}

	userID, err := ts.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("subject = %q, want %q", userID, "user-42")
	}
}

func TestTokenVerifyRejects(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := newTestTokenService(func() time.Time { return base })
	other := newTestTokenService(func() time.Time { return base })
	other.secret = []byte("different-secret")

	pair, err := ts.Generate(&domain.AuthUser{ID: "user-42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name  string
		token string
		svc   *TokenService
	}{
		{name: "garbage", token: "not-a-jwt", svc: ts},
		{name: "empty", token: "", svc: ts},
		{name: "wrong secret", token: pair.AccessToken, svc: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := newTestTokenService(func() time.Time { return now })

	pair, err := ts.Generate(&domain.AuthUser{ID: "user-42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// past the access TTL but inside the refresh TTL
	now = now.Add(16 * time.Minute)
	if _, err := ts.Verify(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired access token, got %v", err)
	}

	renewed, err := ts.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	userID, err := ts.Verify(renewed.AccessToken)
	if err != nil {
		t.Fatalf("verify renewed: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("subject = %q, want %q", userID, "user-42")
	}
	if !renewed.AccessExpiresAt.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("renewed expiry = %v, want %v", renewed.AccessExpiresAt, now.Add(15*time.Minute))
	}

	// past the refresh TTL too
	now = now.Add(720 * time.Hour)
	if _, err := ts.Refresh(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired refresh token, got %v", err)
	}
}

func TestTokenRefreshRejectsAccessTokenAfterAccessExpiry(t *testing.T) {
	// access and refresh tokens differ only in TTL, so an access token
	// presented to Refresh keeps working only until its own expiry
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := newTestTokenService(func() time.Time { return now })

	pair, err := ts.Generate(&domain.AuthUser{ID: "user-42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	now = now.Add(16 * time.Minute)
	if _, err := ts.Refresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
