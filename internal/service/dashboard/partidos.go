// internal/service/dashboard/partidos.go
package dashboard

import (
	"context"
	"errors"
	"sync"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/service/datasource"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Partidos lists the referee's matches with crests and fellow referees.
// A match whose detail cannot be fetched is listed without them.
func (s *DashboardService) Partidos(ctx context.Context, sess *auth.Session) (*referee.PartidosDashboard, error) {
	out, mode, err := withFallback(ctx, s, PagePartidos, sess, func(ctx context.Context, src datasource.DataSource) (*referee.PartidosDashboard, error) {
		matches, err := src.MyMatches(ctx)
		if err != nil {
			return nil, err
		}

		view := &referee.PartidosDashboard{
			Matches:             matches,
			LogosByMatchID:      make(map[string]referee.MatchLogos, len(matches)),
			CompanionsByMatchID: make(map[string]string, len(matches)),
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(detailConcurrency)
		for _, m := range matches {
			matchID := m.MatchID.String()
			g.Go(func() error {
				detail, err := src.MatchDetail(gctx, matchID)
				if err != nil {
					s.logger.Debug("match detail unavailable", zap.String("match_id", matchID), zap.Error(err))
					return nil
				}
				if detail.MessageData == nil {
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				if match := detail.MessageData.Match; match != nil {
					view.LogosByMatchID[matchID] = referee.MatchLogos{
						LocalClubLogo:   match.LocalClubLogo,
						VisitorClubLogo: match.VisitorClubLogo,
					}
				}
				if len(detail.MessageData.Designations) > 0 {
					view.CompanionsByMatchID[matchID] = companionsLabel(detail.MessageData.Designations, sess.Name)
				}
				return nil
			})
		}
		_ = g.Wait()

		return view, nil
	})
	if err != nil {
		return nil, err
	}
	out.Mode = mode
	return out, nil
}

// PartidoDetail is the single match page. Unknown matches yield ErrNotFound.
func (s *DashboardService) PartidoDetail(ctx context.Context, sess *auth.Session, matchID string) (*referee.PartidoDetail, error) {
	if matchID == "" {
		return nil, xerrors.ErrInvalidInput
	}

	out, mode, err := withFallback(ctx, s, PagePartido, sess, func(ctx context.Context, src datasource.DataSource) (*referee.PartidoDetail, error) {
		detail, err := src.MatchDetail(ctx, matchID)
		if err != nil {
			if external.IsNotFound(err) {
				return nil, xerrors.Wrap(xerrors.ErrNotFound, err.Error())
			}
			return nil, err
		}
		if detail.MessageData == nil || detail.MessageData.Match == nil {
			return nil, xerrors.ErrNotFound
		}

		data := detail.MessageData
		view := &referee.PartidoDetail{
			Match:        data.Match,
			Designations: sortDesignations(data.Designations),
			Standing:     data.Standing,
			HasResult:    hasResult(data.Match),
			MapsURL:      mapsURL(data.Match),
		}
		if view.Standing == nil {
			view.Standing = []referee.FitxaPartitStandingItem{}
		}
		if data.Group != nil {
			view.GroupName = data.Group.NameGroup
		}
		return view, nil
	})
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.Mode = mode
	return out, nil
}
