// internal/pkg/session/manager.go
package session

import (
	"context"
	"fmt"
	"time"

	"referee-dashboard/internal/domain/auth"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/jwt"
)

// Manager turns identities into signed session tokens and back.
type Manager struct {
	tokens      *jwt.Manager
	revocations RevocationStore
	now         func() time.Time
}

func NewManager(tokens *jwt.Manager, revocations RevocationStore) *Manager {
	if revocations == nil {
		revocations = NewMemoryRevocationStore()
	}
	return &Manager{
		tokens:      tokens,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue embeds identity into a new token with an absolute expiry.
func (m *Manager) Issue(identity *auth.Identity) (string, *auth.Session, error) {
	if identity == nil || identity.ID == "" {
		return "", nil, fmt.Errorf("cannot issue session for empty identity")
	}

	token, jti, expiresAt, err := m.tokens.Generator.Generate(jwt.Subject{
		ID:          identity.ID,
		Email:       identity.Email,
		Name:        identity.Name,
		AccessToken: identity.AccessToken,
		Profile:     identity.Profile,
	})
	if err != nil {
		return "", nil, err
	}

	return token, &auth.Session{
		Identity:  *identity,
		TokenID:   jti,
		IssuedAt:  m.now(),
		ExpiresAt: expiresAt,
	}, nil
}

// Read verifies token and returns the session it carries.
func (m *Manager) Read(ctx context.Context, token string) (*auth.Session, error) {
	if token == "" {
		return nil, xerrors.ErrUnauthorized
	}

	claims, err := m.tokens.Verifier.Verify(token)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrSessionExpired, err.Error())
	}

	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, xerrors.ErrSessionRevoked
	}

	s := &auth.Session{
		Identity: auth.Identity{
			ID:          claims.Subject,
			Email:       claims.Email,
			Name:        claims.Name,
			AccessToken: claims.AccessToken,
			Profile:     claims.Profile,
		},
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Revoke blacklists the session's token id until its natural expiry.
func (m *Manager) Revoke(ctx context.Context, s *auth.Session) error {
	if s == nil || s.TokenID == "" {
		return nil
	}
	ttl := s.ExpiresAt.Sub(m.now())
	if err := m.revocations.Revoke(ctx, s.TokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// TTL is the absolute lifetime given to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.tokens.Generator.Ttl
}
