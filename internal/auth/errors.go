package auth

import (
	"net/http"

	"infra-catalog/internal/apperrors"
)

// Client-facing auth failures. Each carries the HTTP status the boundary
// responds with; infrastructure failures (signing, storage, verifier
// outages) are raised as plain wrapped errors and map to 500.
var (
	ErrInvalidCredentials    = apperrors.New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials")
	ErrUserNotFound          = apperrors.New("USER_NOT_FOUND", http.StatusNotFound, "user not found")
	ErrUserAlreadyExists     = apperrors.New("USER_ALREADY_EXISTS", http.StatusConflict, "user already exists")
	ErrUnsupportedAuthMethod = apperrors.New("UNSUPPORTED_AUTH_METHOD", http.StatusBadRequest, "unsupported authentication method")
	ErrInvalidToken          = apperrors.New("INVALID_TOKEN", http.StatusUnauthorized, "invalid or expired token")
	ErrGuestFlagRequired     = apperrors.New("GUEST_FLAG_REQUIRED", http.StatusBadRequest, "guest login requires isGuest flag")
	ErrInvalidActivationCode = apperrors.New("INVALID_ACTIVATION_CODE", http.StatusUnauthorized, "invalid activation code")
	ErrInvalidPhoneNumber    = apperrors.New("INVALID_PHONE_NUMBER", http.StatusBadRequest, "invalid phone number")
	ErrInvalidIDToken        = apperrors.New("INVALID_ID_TOKEN", http.StatusUnauthorized, "invalid identity token")
)
