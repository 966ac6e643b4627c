package firebase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"infra-catalog/internal/auth"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *Verifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	Shutdown()
	verifier, err := Init(Config{APIKey: "test-key", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("init verifier: %v", err)
	}
	t.Cleanup(Shutdown)
	return verifier
}

func TestInitRequiresAPIKey(t *testing.T) {
	Shutdown()
	if _, err := Init(Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Shutdown()
	t.Cleanup(Shutdown)

	first, err := Init(Config{APIKey: "key-1"})
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	second, err := Init(Config{APIKey: "key-2"})
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if first != second {
		t.Fatal("init must return the same instance for the process lifetime")
	}
}

func TestVerifyResolvesIdentity(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[{"localId":"uid-1","email":"fed@example.com","displayName":"Fed"}]}`))
	})

	identity, err := verifier.Verify(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UID != "uid-1" || identity.Email != "fed@example.com" || identity.Name != "Fed" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerifyRejectedToken(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "provider 400",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
		},
		{
			name: "no matching user",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"users":[]}`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := newTestVerifier(t, tt.handler)
			if _, err := verifier.Verify(context.Background(), "bad-token"); !errors.Is(err, auth.ErrInvalidIDToken) {
				t.Fatalf("expected ErrInvalidIDToken, got %v", err)
			}
		})
	}
}

func TestVerifyProviderOutage(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := verifier.Verify(context.Background(), "any-token")
	if err == nil {
		t.Fatal("expected error for provider outage")
	}
	if errors.Is(err, auth.ErrInvalidIDToken) {
		t.Fatalf("outage must not look like a rejected token: %v", err)
	}
}
