package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"infra-catalog/internal/auth"
	"infra-catalog/internal/domain"
)

const (
	sessionCookie        = "session_token"
	sessionRefreshCookie = "session_refresh_token"
	userIDKey            = "userID"
)

type authRequest struct {
	Method  string       `json:"method" binding:"required"`
	Payload auth.Payload `json:"payload"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	RememberMe   bool   `json:"rememberMe"`
}

// UserResponse is the public projection of an AuthUser. It never exposes
// the id or any credential material.
type UserResponse struct {
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	IsGuest        bool   `json:"isGuest"`
	Provider       string `json:"provider"`
	Phone          string `json:"phone,omitempty"`
	IsExistingUser bool   `json:"isExistingUser"`
}

type SessionResponse struct {
	AccessToken           string       `json:"accessToken"`
	RefreshToken          string       `json:"refreshToken"`
	AccessTokenExpiresAt  string       `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt string       `json:"refreshTokenExpiresAt"`
	User                  UserResponse `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Method, req.Payload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookies(c, session.Tokens, req.Payload.RememberMe)
	c.JSON(http.StatusOK, sessionToResponse(session))
}

func (h *Handler) register(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	session, err := h.auth.Register(c.Request.Context(), req.Method, req.Payload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookies(c, session.Tokens, req.Payload.RememberMe)
	c.JSON(http.StatusCreated, sessionToResponse(session))
}

// refresh sources the refresh token from the cookie, then the
// refresh-token header, then the body field. Tokens carry no session
// state, so clients that want the extended cookie lifetime re-assert
// rememberMe in the body.
func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	token := h.refreshTokenFrom(c, req.RefreshToken)
	if token == "" {
		h.writeError(c, auth.ErrInvalidToken)
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookies(c, pair, req.RememberMe)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":           pair.AccessToken,
		"refreshToken":          pair.RefreshToken,
		"accessTokenExpiresAt":  pair.AccessExpiresAt.Format(time.RFC3339),
		"refreshTokenExpiresAt": pair.RefreshExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) refreshTokenFrom(c *gin.Context, fromBody string) string {
	if cookie, err := c.Cookie(sessionRefreshCookie); err == nil && cookie != "" {
		return cookie
	}
	if header := strings.TrimSpace(c.GetHeader("refresh-token")); header != "" {
		return header
	}
	return strings.TrimSpace(fromBody)
}

// logout clears the session cookies. Tokens stay valid until natural
// expiry; there is no server-side revocation.
func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(sessionRefreshCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	userID := c.GetString(userIDKey)

	session, err := h.auth.CheckAuth(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionToResponse(session))
}

// requireAuth gates protected routes on a valid access token, taken from
// the Authorization bearer header or the session cookie.
func (h *Handler) requireAuth(c *gin.Context) {
	token := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token == "" {
		if cookie, err := c.Cookie(sessionCookie); err == nil {
			token = cookie
		}
	}
	if token == "" {
		h.abortUnauthorized(c)
		return
	}

	userID, err := h.auth.VerifyAccess(token)
	if err != nil {
		h.abortUnauthorized(c)
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func (h *Handler) abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope{
		Title:      "INVALID_TOKEN",
		Message:    "invalid or expired token",
		Error:      true,
		StatusCode: http.StatusUnauthorized,
	})
}

func (h *Handler) setSessionCookies(c *gin.Context, pair auth.TokenPair, rememberMe bool) {
	accessDays, refreshDays := h.cookies.AccessDays, h.cookies.RefreshDays
	if rememberMe {
		accessDays, refreshDays = h.cookies.AccessDaysLong, h.cookies.RefreshDaysLong
	}
	c.SetCookie(sessionCookie, pair.AccessToken, accessDays*24*3600, "/", "", false, true)
	c.SetCookie(sessionRefreshCookie, pair.RefreshToken, refreshDays*24*3600, "/", "", false, true)
}

func sessionToResponse(session *auth.Session) SessionResponse {
	return SessionResponse{
		AccessToken:           session.Tokens.AccessToken,
		RefreshToken:          session.Tokens.RefreshToken,
		AccessTokenExpiresAt:  session.Tokens.AccessExpiresAt.Format(time.RFC3339),
		RefreshTokenExpiresAt: session.Tokens.RefreshExpiresAt.Format(time.RFC3339),
		User:                  userToResponse(session.User, session.Existing),
	}
}

func userToResponse(user domain.AuthUser, existing bool) UserResponse {
	return UserResponse{
		Email:          user.Email.String(),
		Name:           user.Name,
		IsGuest:        user.IsGuest,
		Provider:       string(user.Provider),
		Phone:          user.Phone.String(),
		IsExistingUser: existing,
	}
}
