// Package metadata stores small named values with an optional expiry in the
// client's local SQLite file. The credential slot lives here.
package metadata

import (
	"context"
	"time"
)

// Entry is one stored value. A zero ExpiresAt never expires.
type Entry struct {
	Value     []byte
	ExpiresAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when the key is absent or already expired.
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	// PurgeExpired drops expired rows and reports how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
