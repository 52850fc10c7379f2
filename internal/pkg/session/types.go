// internal/pkg/session/types.go
package session

import (
	"context"
	"time"
)

// RevocationStore remembers signed-out token ids until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// LoginLimiter counts credential attempts per client and username.
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, username string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, username string) error
}
