// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"errors"
	"time"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/metrics"
	"referee-dashboard/internal/service/datasource"

	"go.uber.org/zap"
)

// Page names used in logs and the fallback metric.
const (
	PageInicio        = "inicio"
	PagePartidos      = "partidos"
	PagePartido       = "partido"
	PageLiquidaciones = "liquidaciones"
	PagePerfil        = "perfil"
	PageDesignaciones = "designaciones"
)

// detailConcurrency bounds the per-match detail fetches of the match list.
const detailConcurrency = 6

// DownloadLog stores acceptance documents fetched by each user.
type DownloadLog interface {
	Record(ctx context.Context, d *referee.DesignationDownload) error
	ListByUser(ctx context.Context, userID string, limit int) ([]referee.DesignationDownload, error)
}

// DownloadNotifier tells the user's other open tabs about a new download.
type DownloadNotifier interface {
	NotifyDesignationDownloaded(userID, designationID string)
}

type DashboardService struct {
	selector  *datasource.Selector
	downloads DownloadLog
	notifier  DownloadNotifier
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewDashboardService(
	selector *datasource.Selector,
	downloads DownloadLog,
	notifier DownloadNotifier,
	logger *zap.Logger,
	m *metrics.Metrics,
) *DashboardService {
	return &DashboardService{
		selector:  selector,
		downloads: downloads,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// withFallback runs build against the session's data source. When the real
// API fails, build runs again against the mock source. Not-found results are
// returned as they are.
func withFallback[T any](
	ctx context.Context,
	s *DashboardService,
	page string,
	sess *auth.Session,
	build func(context.Context, datasource.DataSource) (T, error),
) (T, referee.Mode, error) {
	src := s.selector.For(sess)
	out, err := build(ctx, src)
	if err == nil || src.Mode() != referee.ModeAPI || errors.Is(err, xerrors.ErrNotFound) {
		return out, src.Mode(), err
	}

	s.logger.Warn("external api failed, serving mock data",
		zap.String("page", page),
		zap.String("user_id", sess.ID),
		zap.String("kind", string(external.KindOf(err))),
		zap.Int("status", external.StatusOf(err)),
		zap.Error(err),
	)
	s.metrics.Fallback(page)

	mock := s.selector.Mock(sess)
	out, err = build(ctx, mock)
	return out, mock.Mode(), err
}
