package ports

import (
	"context"
	"time"
)

// BlacklistCache is the shared denylist of access tokens revoked before their
// natural expiry. Entries never need to outlive the token they revoke.
type BlacklistCache interface {
	// Put records the raw token string together with the token's own expiry
	// instant.
	Put(ctx context.Context, token string, expiry time.Time) error

	// IsBlacklisted reports true only if an entry exists and its stored
	// expiry is still in the future; expired entries are treated as absent.
	// Reads never extend an entry's lifetime.
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
