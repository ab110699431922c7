// Package credentials keeps the single bearer credential of the client.
//
// A Store holds at most one live credential. Expired credentials read as
// absent. There is no refresh or rotation: when the credential is gone the
// user has to log in again.
package credentials

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is an opaque bearer token and the instant it stops being usable.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether c is unusable at now.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type Store interface {
	// Get returns (nil, nil) when no live credential is stored.
	Get(ctx context.Context) (*Credential, error)
	// Set replaces the stored credential. A zero ExpiresAt is filled in from
	// the store's TTL and the token's own exp claim.
	Set(ctx context.Context, c Credential) error
	// Clear removes the credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	Close() error
}

// resolveExpiry returns now+ttl, or the token's exp claim when that comes
// first. The token is not verified: the client never holds the signing key.
func resolveExpiry(token string, now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return exp
	}
	claim, err := parsed.Claims.GetExpirationTime()
	if err != nil || claim == nil {
		return exp
	}
	if claim.Time.Before(exp) {
		return claim.Time
	}
	return exp
}

func prepare(c Credential, now time.Time, ttl time.Duration) Credential {
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = resolveExpiry(c.Token, now, ttl)
	}
	return c
}
