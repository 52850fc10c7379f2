// internal/service/dashboard/inicio.go
package dashboard

import (
	"context"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/service/datasource"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Inicio assembles the home page: greeting, designation counters and the next match.
func (s *DashboardService) Inicio(ctx context.Context, sess *auth.Session) (*referee.InicioDashboard, error) {
	out, mode, err := withFallback(ctx, s, PageInicio, sess, func(ctx context.Context, src datasource.DataSource) (*referee.InicioDashboard, error) {
		var (
			matches []referee.MyMatchDesignation
			status  *referee.DesignationsStatus
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			matches, err = src.MyMatches(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			status, err = src.DesignationsStatus(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		view := &referee.InicioDashboard{
			DesignationsStatus: status,
			NextMatch:          nextMatch(matches, s.now()),
		}
		if view.NextMatch != nil {
			view.NextMatchDetail = s.matchLogos(ctx, src, view.NextMatch.MatchID.String())
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}

	out.Mode = mode
	out.RefereeName = displayName(sess.Name)
	return out, nil
}

// matchLogos returns the crests of a match, or nil when the detail is unavailable.
func (s *DashboardService) matchLogos(ctx context.Context, src datasource.DataSource, matchID string) *referee.MatchLogos {
	detail, err := src.MatchDetail(ctx, matchID)
	if err != nil {
		s.logger.Debug("match logos unavailable", zap.String("match_id", matchID), zap.Error(err))
		return nil
	}
	if detail.MessageData == nil || detail.MessageData.Match == nil {
		return nil
	}
	m := detail.MessageData.Match
	return &referee.MatchLogos{LocalClubLogo: m.LocalClubLogo, VisitorClubLogo: m.VisitorClubLogo}
}
