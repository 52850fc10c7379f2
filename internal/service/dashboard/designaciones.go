// internal/service/dashboard/designaciones.go
package dashboard

import (
	"context"
	"fmt"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/service/datasource"

	"go.uber.org/zap"
)

const historyLimit = 50

// Designaciones lists downloaded and pending designations.
func (s *DashboardService) Designaciones(ctx context.Context, sess *auth.Session) (*referee.DesignacionesDashboard, error) {
	out, mode, err := withFallback(ctx, s, PageDesignaciones, sess, func(ctx context.Context, src datasource.DataSource) (*referee.DesignacionesDashboard, error) {
		status, err := src.DesignationsStatus(ctx)
		if err != nil {
			return nil, err
		}
		return &referee.DesignacionesDashboard{
			Downloaded:      status.Downloaded,
			Pending:         status.Pending,
			DownloadedLabel: downloadedLabel(len(status.Downloaded)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	out.Mode = mode
	return out, nil
}

// Documento fetches the acceptance document of a designation. It needs the
// real API; otherwise ErrUnavailable is returned.
func (s *DashboardService) Documento(ctx context.Context, sess *auth.Session, designationID string) ([]byte, error) {
	if designationID == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if !s.selector.UseRealAPI(sess) {
		return nil, xerrors.ErrUnavailable
	}

	doc, err := s.selector.For(sess).AcceptanceDocument(ctx, designationID)
	if err != nil {
		s.logger.Error("failed to fetch acceptance document",
			zap.String("user_id", sess.ID),
			zap.String("designation_id", designationID),
			zap.String("kind", string(external.KindOf(err))),
			zap.Int("status", external.StatusOf(err)),
			zap.Error(err),
		)
		if external.IsNotFound(err) {
			return nil, xerrors.Wrap(xerrors.ErrNotFound, err.Error())
		}
		return nil, err
	}

	if s.downloads != nil {
		entry := &referee.DesignationDownload{
			UserID:        sess.ID,
			DesignationID: designationID,
			SizeBytes:     len(doc),
			DownloadedAt:  s.now(),
		}
		if err := s.downloads.Record(ctx, entry); err != nil {
			s.logger.Warn("failed to record designation download",
				zap.String("user_id", sess.ID),
				zap.String("designation_id", designationID),
				zap.Error(err),
			)
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyDesignationDownloaded(sess.ID, designationID)
	}

	s.logger.Info("acceptance document downloaded",
		zap.String("user_id", sess.ID),
		zap.String("designation_id", designationID),
		zap.Int("bytes", len(doc)),
	)
	return doc, nil
}

// History returns the user's most recent document downloads.
func (s *DashboardService) History(ctx context.Context, sess *auth.Session) (*referee.DownloadHistory, error) {
	if s.downloads == nil {
		return &referee.DownloadHistory{Downloads: []referee.DesignationDownload{}}, nil
	}
	items, err := s.downloads.ListByUser(ctx, sess.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	if items == nil {
		items = []referee.DesignationDownload{}
	}
	return &referee.DownloadHistory{Downloads: items}, nil
}
