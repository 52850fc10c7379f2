// internal/service/datasource/datasource.go
package datasource

import (
	"context"

	"referee-dashboard/internal/config"
	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
)

// DataSource is everything the dashboard pages read about the signed-in referee.
type DataSource interface {
	Mode() referee.Mode
	MyMatches(ctx context.Context) ([]referee.MyMatchDesignation, error)
	DesignationsStatus(ctx context.Context) (*referee.DesignationsStatus, error)
	MatchDetail(ctx context.Context, matchID string) (*referee.MatchDetail, error)
	WeeklySettlement(ctx context.Context) ([]referee.PreliquidationWeeklyItem, error)
	PaymentHistory(ctx context.Context) ([]referee.PaymentNotPending, error)
	PersonalData(ctx context.Context) (*referee.RefereePersonalData, error)
	AcceptanceDocument(ctx context.Context, designationID string) ([]byte, error)
}

// Selector picks the data source for a request.
type Selector struct {
	client  *external.Client
	useMock bool
}

func NewSelector(client *external.Client, cfg config.ExternalAPIConfig) *Selector {
	return &Selector{client: client, useMock: cfg.UseMock}
}

// UseRealAPI is true iff the session carries a bearer token, the external
// URL is configured and mock mode is off.
func (s *Selector) UseRealAPI(sess *auth.Session) bool {
	return sess != nil &&
		sess.HasAccessToken() &&
		s.client != nil && s.client.Configured() &&
		!s.useMock
}

func (s *Selector) For(sess *auth.Session) DataSource {
	if s.UseRealAPI(sess) {
		return NewRealAPISource(s.client, sess.AccessToken)
	}
	return s.Mock(sess)
}

// Mock returns the static source for sess, used directly or as a fallback.
func (s *Selector) Mock(sess *auth.Session) *MockSource {
	return NewMockSource(sess)
}
