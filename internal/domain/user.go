package domain

import "time"

// Provider identifies the credential method a user authenticated with.
type Provider string

const (
	ProviderEmail    Provider = "email"
	ProviderFirebase Provider = "firebase"
	ProviderCode     Provider = "code"
	ProviderGuest    Provider = "guest"
	ProviderPhone    Provider = "phone"
)

// AuthUser is the canonical identity record produced by every credential
// path. It never carries the password hash; that stays behind the
// repository port.
type AuthUser struct {
	ID        string
	Email     Email
	Name      string
	IsGuest   bool
	Code      string
	Provider  Provider
	Phone     Phone
	CreatedAt time.Time
	UpdatedAt time.Time
}
