// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"referee-dashboard/internal/domain/auth"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/metrics"
	"referee-dashboard/internal/pkg/session"

	"go.uber.org/zap"
)

// LogoutNotifier pushes a force-logout to sockets opened with a session.
type LogoutNotifier interface {
	ForceLogout(userID, sessionID, reason string)
}

type AuthService struct {
	resolver       *Resolver
	sessionManager *session.Manager
	rateLimiter    session.LoginLimiter
	notifier       LogoutNotifier
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

func NewAuthService(
	resolver *Resolver,
	sessionManager *session.Manager,
	rateLimiter session.LoginLimiter,
	notifier LogoutNotifier,
	logger *zap.Logger,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		resolver:       resolver,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		notifier:       notifier,
		logger:         logger,
		metrics:        m,
	}
}

// SignIn resolves creds and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, creds *auth.Credentials) (string, *auth.Session, error) {
	if s.rateLimiter != nil {
		allowed, remaining, err := s.rateLimiter.CheckLoginAttempt(ctx, creds.IPAddress, creds.Username)
		if err != nil {
			// the limiter store being down must not lock everybody out
			s.logger.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.metrics.Login("any", "limited")
			s.logger.Warn("too many login attempts",
				zap.String("username", creds.Username),
				zap.String("ip", creds.IPAddress),
			)
			return "", nil, xerrors.ErrRateLimited
		} else {
			s.logger.Debug("login attempt", zap.String("username", creds.Username), zap.Int64("remaining", remaining))
		}
	}

	identity, err := s.resolver.Resolve(ctx, creds)
	if err != nil {
		if errors.Is(err, xerrors.ErrLoginUnavailable) {
			s.logger.Warn("sign in failed, login endpoint unavailable", zap.String("username", creds.Username))
		}
		return "", nil, err
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.ResetLoginAttempts(ctx, creds.IPAddress, creds.Username); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	token, sess, err := s.sessionManager.Issue(identity)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Info("user signed in",
		zap.String("user_id", sess.ID),
		zap.Bool("has_access_token", sess.HasAccessToken()),
	)
	return token, sess, nil
}

// SignOut revokes the session and disconnects sockets opened with it.
func (s *AuthService) SignOut(ctx context.Context, sess *auth.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessionManager.Revoke(ctx, sess); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.ForceLogout(sess.ID, sess.TokenID, "signout")
	}

	s.logger.Info("user signed out", zap.String("user_id", sess.ID))
	return nil
}

// ValidateSession returns the session carried by token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*auth.Session, error) {
	return s.sessionManager.Read(ctx, token)
}
