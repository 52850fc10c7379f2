// internal/service/dashboard/perfil.go
package dashboard

import (
	"context"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"

	"go.uber.org/zap"
)

// Perfil never falls back: a real API failure is returned to the caller.
func (s *DashboardService) Perfil(ctx context.Context, sess *auth.Session) (*referee.PerfilDashboard, error) {
	src := s.selector.For(sess)

	data, err := src.PersonalData(ctx)
	if err != nil {
		s.logger.Error("failed to load personal data",
			zap.String("user_id", sess.ID),
			zap.String("kind", string(external.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	return &referee.PerfilDashboard{
		Mode:  src.Mode(),
		Data:  *data,
		Items: profileItems(data),
	}, nil
}

func profileItems(p *referee.RefereePersonalData) []referee.ProfileItem {
	location := p.Location()
	if location == "" {
		location = p.TownName
	}
	return []referee.ProfileItem{
		{Label: "Nombre", Value: p.FullName()},
		{Label: "Nº árbitro", Value: p.RefereeNumber.String()},
		{Label: "Email", Value: p.Email},
		{Label: "Teléfono", Value: p.Phone()},
		{Label: "Localidad", Value: location},
		{Label: "Categoría", Value: p.CategoryName},
	}
}
