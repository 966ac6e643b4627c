package auth

import (
	"context"

	"infra-catalog/internal/domain"
)

// Method discriminators. The payload's method field selects the strategy.
const (
	MethodEmail    = "email"
	MethodFirebase = "firebase"
	MethodCode     = "code"
	MethodGuest    = "guest"
	MethodPhone    = "phone"
)

// Payload is the untyped credential payload presented with a login or
// register request. Which fields matter depends on the method.
type Payload struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	IDToken    string `json:"idToken"`
	Code       string `json:"code"`
	Phone      string `json:"phone"`
	IsGuest    bool   `json:"isGuest"`
	RememberMe bool   `json:"rememberMe"`
}

// Resolution is the outcome of a strategy call. Existing is session-scoped
// orchestration state, deliberately kept off the persisted entity: it tells
// the caller whether the user was found rather than just created.
type Resolution struct {
	User     domain.AuthUser
	Existing bool
}

// Strategy implements login and registration for one credential method.
// Strategies that do not support registration return
// ErrUnsupportedAuthMethod from Register.
type Strategy interface {
	Method() string
	Login(ctx context.Context, payload Payload) (Resolution, error)
	Register(ctx context.Context, payload Payload) (Resolution, error)
}

// Registry resolves strategies by method discriminator. Strategies are
// indexed once at construction; discriminators are unique so order is
// irrelevant.
type Registry struct {
	strategies map[string]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	index := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		index[s.Method()] = s
	}
	return &Registry{strategies: index}
}

// Resolve returns the strategy for the method, or ErrUnsupportedAuthMethod.
func (r *Registry) Resolve(method string) (Strategy, error) {
	s, ok := r.strategies[method]
	if !ok {
		return nil, ErrUnsupportedAuthMethod
	}
	return s, nil
}
