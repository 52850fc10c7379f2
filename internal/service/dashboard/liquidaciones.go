// internal/service/dashboard/liquidaciones.go
package dashboard

import (
	"context"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/service/datasource"

	"golang.org/x/sync/errgroup"
)

// Liquidaciones returns this week's settlement with totals and the payment history.
func (s *DashboardService) Liquidaciones(ctx context.Context, sess *auth.Session) (*referee.LiquidacionesDashboard, error) {
	out, mode, err := withFallback(ctx, s, PageLiquidaciones, sess, func(ctx context.Context, src datasource.DataSource) (*referee.LiquidacionesDashboard, error) {
		view := &referee.LiquidacionesDashboard{}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			view.Weekly, err = src.WeeklySettlement(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			view.Historico, err = src.PaymentHistory(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		view.WeeklyTotals = weeklyTotals(view.Weekly)
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	out.Mode = mode
	return out, nil
}

func weeklyTotals(items []referee.PreliquidationWeeklyItem) referee.SettlementTotals {
	var t referee.SettlementTotals
	for _, it := range items {
		t.Gross += it.GrossAmount
		t.Irpf += it.IrpfRetentionAmount
		t.Net += it.NetAmount
	}
	t.Gross = round2(t.Gross)
	t.Irpf = round2(t.Irpf)
	t.Net = round2(t.Net)
	return t
}
