// internal/service/datasource/mock.go
package datasource

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	xerrors "referee-dashboard/internal/pkg/errors"
)

// MockSource serves static data shaped like the federation API responses.
type MockSource struct {
	sess *auth.Session
	now  func() time.Time
}

func NewMockSource(sess *auth.Session) *MockSource {
	return &MockSource{sess: sess, now: time.Now}
}

func (s *MockSource) Mode() referee.Mode { return referee.ModeFallback }

func (s *MockSource) MyMatches(context.Context) ([]referee.MyMatchDesignation, error) {
	return mockMatches(s.now()), nil
}

func (s *MockSource) DesignationsStatus(context.Context) (*referee.DesignationsStatus, error) {
	return mockDesignationsStatus(s.now()), nil
}

func (s *MockSource) MatchDetail(_ context.Context, matchID string) (*referee.MatchDetail, error) {
	detail, ok := mockMatchDetail(s.now(), matchID)
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return detail, nil
}

func (s *MockSource) WeeklySettlement(context.Context) ([]referee.PreliquidationWeeklyItem, error) {
	return mockWeekly(s.now()), nil
}

func (s *MockSource) PaymentHistory(context.Context) ([]referee.PaymentNotPending, error) {
	return mockPayments(s.now()), nil
}

// PersonalData is derived from the session: its stored profile when there is
// one, otherwise the identity's name and email.
func (s *MockSource) PersonalData(context.Context) (*referee.RefereePersonalData, error) {
	if s.sess == nil {
		return &referee.RefereePersonalData{}, nil
	}

	if len(s.sess.Profile) > 0 {
		raw, err := json.Marshal(s.sess.Profile)
		if err == nil {
			var data referee.RefereePersonalData
			if json.Unmarshal(raw, &data) == nil {
				if data.Email == "" {
					data.Email = s.sess.Email
				}
				return &data, nil
			}
		}
	}

	first, rest := splitName(s.sess.Name)
	return &referee.RefereePersonalData{
		ID:       referee.ID(s.sess.ID),
		Name:     first,
		LastName: rest,
		Email:    s.sess.Email,
	}, nil
}

// AcceptanceDocument has no mock counterpart.
func (s *MockSource) AcceptanceDocument(context.Context, string) ([]byte, error) {
	return nil, xerrors.ErrUnavailable
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
