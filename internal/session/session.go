package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

var ErrNoSession = errors.New("aucune session active")

// Session is the process-wide authenticated identity: what the browser
// client kept in local storage (token, role, id), with an explicit
// lifecycle instead of ambient lookups. Components receive it as a
// parameter; nothing reads it from a global.
type Session struct {
	TokenValue string      `json:"token"`
	Role       domain.Role `json:"userRole"`
	UserID     string      `json:"id"`
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.TokenValue
}

func (s *Session) Active() bool {
	return s != nil && s.TokenValue != ""
}

// Claims is the subset of the backend's JWT payload the client displays.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// InspectToken decodes the session token without verifying the signature:
// the client has no signing secret and only needs the claims for display
// and expiry warnings. Authorization stays entirely backend-side.
func (s *Session) InspectToken() (*Claims, error) {
	if !s.Active() {
		return nil, ErrNoSession
	}
	var claims jwt.MapClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.TokenValue, &claims); err != nil {
		return nil, err
	}
	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether the token carries an exp claim in the past.
// Tokens without a readable exp are assumed live; the backend has the
// final word either way.
func (s *Session) Expired(now time.Time) bool {
	claims, err := s.InspectToken()
	if err != nil {
		return false
	}
	return !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(now)
}
