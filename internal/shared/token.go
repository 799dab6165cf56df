package shared

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of bearer token claims shown by `auth status`.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ReadTokenClaims decodes the claims of a JWT without verifying its signature.
//
// The client never holds the signing key; the server remains the authority on validity.
func ReadTokenClaims(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var out TokenClaims
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.Subject = sub
	} else if v, ok := claims["sub"]; ok {
		out.Subject = fmt.Sprint(v)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
