// Package firebase verifies Firebase ID tokens through the Identity
// Toolkit REST API. The client is a process-wide singleton: Init is
// idempotent for the process lifetime and Shutdown releases it.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"infra-catalog/internal/auth"
)

const lookupEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

// Config carries the provider credentials.
type Config struct {
	APIKey   string
	Endpoint string // overridable for tests
}

// Verifier calls the identity provider to verify ID tokens.
type Verifier struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

var (
	mu        sync.Mutex
	singleton *Verifier
)

// Init constructs the process-wide verifier. Calling it again returns the
// existing instance.
func Init(cfg Config) (*Verifier, error) {
	mu.Lock()
	defer mu.Unlock()
	if singleton != nil {
		return singleton, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firebase api key is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = lookupEndpoint
	}
	singleton = &Verifier{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	return singleton, nil
}

// Shutdown releases the singleton so a later Init builds a fresh client.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if singleton != nil {
		singleton.client.CloseIdleConnections()
		singleton = nil
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"users"`
}

// Verify resolves the token to the attested identity. A provider rejection
// maps to auth.ErrInvalidIDToken; transport failures surface as plain
// errors so the boundary treats them as infrastructure faults.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*auth.FederatedIdentity, error) {
	body, err := json.Marshal(lookupRequest{IDToken: idToken})
	if err != nil {
		return nil, fmt.Errorf("encode lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s?key=%s", v.endpoint, v.apiKey), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, auth.ErrInvalidIDToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity lookup: unexpected status %d", resp.StatusCode)
	}

	var decoded lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if len(decoded.Users) == 0 {
		return nil, auth.ErrInvalidIDToken
	}

	u := decoded.Users[0]
	return &auth.FederatedIdentity{
		UID:   u.LocalID,
		Email: u.Email,
		Name:  u.DisplayName,
	}, nil
}
