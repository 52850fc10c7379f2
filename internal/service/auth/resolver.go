// internal/service/auth/resolver.go
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"referee-dashboard/internal/config"
	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const personalDataPath = "auth/my-referee/personal-data"

var bearerPrefix = regexp.MustCompile(`(?i)^Bearer\s+`)

// Resolver checks a username/password pair against the operator account
// and then the federation login endpoint. The first match wins.
type Resolver struct {
	operator config.OperatorConfig
	loginURL string
	client   *external.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewResolver(operator config.OperatorConfig, loginURL string, client *external.Client, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		operator: operator,
		loginURL: loginURL,
		client:   client,
		logger:   logger,
		metrics:  m,
	}
}

// Resolve returns the identity for creds. Bad credentials yield
// ErrInvalidCredentials; an unreachable login endpoint yields an error that
// matches both ErrInvalidCredentials and ErrLoginUnavailable.
func (r *Resolver) Resolve(ctx context.Context, creds *auth.Credentials) (*auth.Identity, error) {
	if creds == nil || creds.Username == "" || creds.Password == "" {
		return nil, xerrors.ErrInvalidCredentials
	}

	if identity, ok := r.matchOperator(creds.Username, creds.Password); ok {
		r.metrics.Login("operator", "ok")
		return identity, nil
	}

	if r.loginURL == "" || r.client == nil {
		r.metrics.Login("operator", "invalid")
		return nil, xerrors.ErrInvalidCredentials
	}

	identity, err := r.remoteLogin(ctx, creds)
	switch {
	case err == nil:
		r.metrics.Login("remote", "ok")
	case errors.Is(err, xerrors.ErrLoginUnavailable):
		r.metrics.Login("remote", "unavailable")
	default:
		r.metrics.Login("remote", "invalid")
	}
	return identity, err
}

func (r *Resolver) matchOperator(username, password string) (*auth.Identity, bool) {
	if !r.operator.Enabled() || username != r.operator.Email {
		return nil, false
	}

	if r.operator.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(r.operator.PasswordHash), []byte(password)) != nil {
			return nil, false
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(r.operator.Password)) != 1 {
		return nil, false
	}

	return &auth.Identity{
		ID:    auth.OperatorID,
		Email: r.operator.Email,
		Name:  strings.SplitN(username, "@", 2)[0],
	}, true
}

func (r *Resolver) remoteLogin(ctx context.Context, creds *auth.Credentials) (*auth.Identity, error) {
	resp, err := r.client.Call(ctx, external.Request{
		Path:   r.loginURL,
		Method: http.MethodPost,
		Body: map[string]string{
			"username": creds.Username,
			"password": creds.Password,
			"type":     creds.Type,
		},
	})
	if err != nil {
		if external.KindOf(err) == external.KindUpstream {
			r.logger.Info("remote login rejected",
				zap.String("username", creds.Username),
				zap.Int("status", external.StatusOf(err)),
			)
			return nil, xerrors.ErrInvalidCredentials
		}
		r.logger.Warn("remote login unavailable",
			zap.String("username", creds.Username),
			zap.String("kind", string(external.KindOf(err))),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", xerrors.ErrInvalidCredentials, xerrors.Wrap(xerrors.ErrLoginUnavailable, err.Error()))
	}

	bearer := strings.TrimSpace(bearerPrefix.ReplaceAllString(resp.Header.Get(external.HeaderAuthorization), ""))
	if bearer == "" {
		r.logger.Warn("remote login returned no bearer token", zap.String("username", creds.Username))
		return nil, xerrors.ErrInvalidCredentials
	}

	identity, err := r.personalIdentity(ctx, creds.Username, bearer)
	if err != nil {
		r.logger.Info("personal data unavailable after login",
			zap.String("username", creds.Username),
			zap.Error(err),
		)
		return &auth.Identity{
			ID:          auth.ExternalFallbackID,
			Email:       creds.Username,
			Name:        creds.Username,
			AccessToken: bearer,
		}, nil
	}
	return identity, nil
}

// personalIdentity builds the identity from the referee's personal data,
// keeping the whole payload as the session profile.
func (r *Resolver) personalIdentity(ctx context.Context, username, bearer string) (*auth.Identity, error) {
	resp, err := r.client.Call(ctx, external.Request{
		Path:        personalDataPath,
		Method:      http.MethodGet,
		AccessToken: bearer,
	})
	if err != nil {
		return nil, err
	}
	if resp.Kind != external.BodyJSON {
		return nil, fmt.Errorf("personal data is not json")
	}

	var profile map[string]interface{}
	if err := json.Unmarshal(resp.JSON, &profile); err != nil || profile == nil {
		return nil, fmt.Errorf("personal data is not an object")
	}
	var personal referee.RefereePersonalData
	if err := json.Unmarshal(resp.JSON, &personal); err != nil {
		return nil, fmt.Errorf("decode personal data: %w", err)
	}

	id := personal.ID.String()
	if id == "" {
		id = personal.UserID.String()
	}
	if id == "" {
		id = auth.ExternalFallbackID
	}

	email := personal.Email
	if email == "" {
		email = username
	}

	name := personal.FullName()
	if name == "" {
		name = email
	}

	return &auth.Identity{
		ID:          id,
		Email:       email,
		Name:        name,
		AccessToken: bearer,
		Profile:     profile,
	}, nil
}
