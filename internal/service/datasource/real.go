// internal/service/datasource/real.go
package datasource

import (
	"context"
	"net/url"

	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
)

const (
	pathMyMatches          = "auth/my-referee/matches"
	pathDesignationsStatus = "auth/my-referee/designations/status"
	pathMatchDetail        = "match/fitxa-partit/"
	pathWeekly             = "auth/my-referee/preliquidation/weekly"
	pathPayments           = "auth/my-referee/payments/not-pending"
	pathPersonalData       = "auth/my-referee/personal-data"
	pathAcceptDesignation  = "auth/my-referee/designations/accept"
)

// RealAPISource reads from the federation API with the session's bearer token.
type RealAPISource struct {
	client *external.Client
	token  string
}

func NewRealAPISource(client *external.Client, token string) *RealAPISource {
	return &RealAPISource{client: client, token: token}
}

func (s *RealAPISource) Mode() referee.Mode { return referee.ModeAPI }

func (s *RealAPISource) MyMatches(ctx context.Context) ([]referee.MyMatchDesignation, error) {
	return getList[referee.MyMatchDesignation](ctx, s.client, pathMyMatches, s.token)
}

func (s *RealAPISource) DesignationsStatus(ctx context.Context) (*referee.DesignationsStatus, error) {
	var status referee.DesignationsStatus
	if err := s.client.GetJSON(ctx, pathDesignationsStatus, s.token, &status); err != nil {
		return nil, err
	}
	if status.Downloaded == nil {
		status.Downloaded = []referee.DesignationItem{}
	}
	if status.Pending == nil {
		status.Pending = []referee.DesignationItem{}
	}
	return &status, nil
}

func (s *RealAPISource) MatchDetail(ctx context.Context, matchID string) (*referee.MatchDetail, error) {
	var detail referee.MatchDetail
	if err := s.client.GetJSON(ctx, pathMatchDetail+url.PathEscape(matchID), s.token, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *RealAPISource) WeeklySettlement(ctx context.Context) ([]referee.PreliquidationWeeklyItem, error) {
	return getList[referee.PreliquidationWeeklyItem](ctx, s.client, pathWeekly, s.token)
}

func (s *RealAPISource) PaymentHistory(ctx context.Context) ([]referee.PaymentNotPending, error) {
	return getList[referee.PaymentNotPending](ctx, s.client, pathPayments, s.token)
}

func (s *RealAPISource) PersonalData(ctx context.Context) (*referee.RefereePersonalData, error) {
	var data referee.RefereePersonalData
	if err := s.client.GetJSON(ctx, pathPersonalData, s.token, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *RealAPISource) AcceptanceDocument(ctx context.Context, designationID string) ([]byte, error) {
	return s.client.FetchBinary(ctx, pathAcceptDesignation, s.token, referee.AcceptanceDocumentRequest{
		DesignationID: designationID,
	})
}
