package credstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the agent can tell about the stored bearer token
// without the server's secret: presence, subject, and expiry. Only the
// backend can actually verify the signature — a locally "valid" token
// can still come back 401.
type TokenInfo struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
}

// InspectToken decodes the claims of a JWT without verifying it. A token
// that does not parse at all still counts as authenticated-with-token;
// the server decides whether it is accepted.
func InspectToken(token string) TokenInfo {
	if token == "" {
		return TokenInfo{}
	}
	info := TokenInfo{Authenticated: true}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return info
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return info
	}

	if sub, err := claims.GetSubject(); err == nil {
		info.UserID = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		info.Expired = time.Now().After(t)
	}
	return info
}
