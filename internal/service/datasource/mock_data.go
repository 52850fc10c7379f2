// internal/service/datasource/mock_data.go
package datasource

import (
	"time"

	"referee-dashboard/internal/domain/referee"
)

const matchDayLayout = "2006-01-02T15:04:05"

type mockFixture struct {
	id, designationID string
	offset            time.Duration
	category          string
	competition       string
	local, visitor    string
	localScore        *int
	visitorScore      *int
	field, address    string
	postalCode, town  string
	role              string
	colleague         string
	colleagueRole     string
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

var mockFixtures = []mockFixture{
	{
		id: "900101", designationID: "700101", offset: -5 * 24 * time.Hour,
		category: "Sénior Masculino", competition: "Primera Autonómica",
		local: "CB Sóller", visitor: "CB Alcúdia",
		localScore: intPtr(71), visitorScore: intPtr(64),
		field: "Pavelló Municipal de Sóller", address: "Carrer del Camp de Futbol, 2",
		postalCode: "07100", town: "Sóller",
		role: "Árbitro principal", colleague: "Marta Riera", colleagueRole: "Árbitro auxiliar",
	},
	{
		id: "900102", designationID: "700102", offset: 2*24*time.Hour + 3*time.Hour,
		category: "Júnior Femenino", competition: "Liga Júnior",
		local: "CD Esporles", visitor: "CB Santa Ponça",
		field: "Poliesportiu d'Esporles", address: "Carrer de Sa Fàbrica, 11",
		postalCode: "07190", town: "Esporles",
		role: "Árbitro principal",
	},
	{
		id: "900103", designationID: "700103", offset: 9*24*time.Hour + 5*time.Hour,
		category: "Cadete Masculino", competition: "Copa Cadete",
		local: "CB Inca", visitor: "CB Pollença",
		field: "Pavelló Mateu Cañellas", address: "Avinguda del General Luque, 300",
		postalCode: "07300", town: "Inca",
		role: "Árbitro auxiliar", colleague: "Joan Ferrer", colleagueRole: "Árbitro principal",
	},
}

func fixtureDay(now time.Time, f mockFixture) time.Time {
	day := now.Add(f.offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 18, 0, 0, 0, day.Location())
}

func mockMatches(now time.Time) []referee.MyMatchDesignation {
	out := make([]referee.MyMatchDesignation, 0, len(mockFixtures))
	for _, f := range mockFixtures {
		day := fixtureDay(now, f)
		out = append(out, referee.MyMatchDesignation{
			MatchID:             referee.ID(f.id),
			DesignationID:       referee.ID(f.designationID),
			MatchDay:            day.Format(matchDayLayout),
			FormattedMatchDay:   day.Format("02/01/2006 15:04"),
			CategoryName:        f.category,
			CompetitionName:     f.competition,
			LocalTeamName:       f.local,
			VisitorTeamName:     f.visitor,
			InstallationName:    f.field,
			InstallationAddress: f.address,
			Town:                f.town,
			RefereeRole:         f.role,
		})
	}
	return out
}

func mockDesignationsStatus(now time.Time) *referee.DesignationsStatus {
	status := &referee.DesignationsStatus{
		Downloaded: []referee.DesignationItem{},
		Pending:    []referee.DesignationItem{},
	}
	for _, f := range mockFixtures {
		day := fixtureDay(now, f)
		item := referee.DesignationItem{
			DesignationID:    referee.ID(f.designationID),
			MatchID:          referee.ID(f.id),
			MatchDay:         day.Format(matchDayLayout),
			InstallationName: f.field,
			LocalTeamName:    f.local,
			VisitorTeamName:  f.visitor,
			CategoryName:     f.category,
			RefereeRole:      f.role,
		}
		if day.Before(now) {
			status.Downloaded = append(status.Downloaded, item)
		} else {
			status.Pending = append(status.Pending, item)
		}
	}
	return status
}

func mockMatchDetail(now time.Time, matchID string) (*referee.MatchDetail, bool) {
	for _, f := range mockFixtures {
		if f.id != matchID {
			continue
		}
		designations := []referee.FitxaPartitDesignation{
			{RefereeName: "Árbitro", RefereeSurname: "Demo", RefereeRole: f.role},
			{RefereeName: "Pere", RefereeSurname: "Vidal", RefereeRole: "Anotador"},
		}
		if f.colleague != "" {
			first, rest := splitName(f.colleague)
			designations = append(designations, referee.FitxaPartitDesignation{
				RefereeName: first, RefereeSurname: rest, RefereeRole: f.colleagueRole,
			})
		}
		return &referee.MatchDetail{
			MessageData: &referee.MatchDetailData{
				Match: &referee.FitxaPartitMatch{
					IDMatch:         referee.ID(f.id),
					MatchDay:        fixtureDay(now, f).Format(matchDayLayout),
					NameCompetition: f.competition,
					NameCategory:    f.category,
					NameLocalTeam:   f.local,
					NameVisitorTeam: f.visitor,
					LocalScore:      f.localScore,
					VisitorScore:    f.visitorScore,
					LocalClubLogo:   strPtr("/logos/" + f.id + "-local.png"),
					VisitorClubLogo: nil,
					NameField:       f.field,
					AddressField:    f.address,
					PostalCodeField: f.postalCode,
					NameTown:        f.town,
				},
				Designations: designations,
				Standing: []referee.FitxaPartitStandingItem{
					{Position: 1, TeamName: f.local, Points: 18, Played: 10, Won: 8, Lost: 2},
					{Position: 2, TeamName: f.visitor, Points: 16, Played: 10, Won: 6, Lost: 4},
				},
				Group: &referee.FitxaPartitGroup{NameGroup: "Grupo A"},
			},
		}, true
	}
	return nil, false
}

func mockWeekly(now time.Time) []referee.PreliquidationWeeklyItem {
	out := []referee.PreliquidationWeeklyItem{}
	for i, f := range mockFixtures {
		day := fixtureDay(now, f)
		gross := 42.0 + float64(i)*6
		irpf := gross * 0.15
		out = append(out, referee.PreliquidationWeeklyItem{
			LiquidationID:       referee.ID(f.designationID),
			MatchDate:           day.Format(matchDayLayout),
			FormattedMatchDate:  day.Format("02/01/2006"),
			LocalTeamName:       f.local,
			VisitorTeamName:     f.visitor,
			CategoryName:        f.category,
			ConceptLiteral:      "Arbitraje",
			GrossAmount:         gross,
			IrpfRetentionAmount: irpf,
			NetAmount:           gross - irpf,
		})
	}
	return out
}

func mockPayments(now time.Time) []referee.PaymentNotPending {
	out := []referee.PaymentNotPending{}
	for i := 1; i <= 3; i++ {
		end := now.AddDate(0, -i, 0)
		start := end.AddDate(0, 0, -27)
		gross := 180.0 + float64(i)*24
		irpf := gross * 0.15
		out = append(out, referee.PaymentNotPending{
			IDPayment:          referee.ID(time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).Format("200601")),
			InitialControlDate: start.Format("2006-01-02"),
			FinalControlDate:   end.Format("2006-01-02"),
			GrossAmount:        gross,
			AmountHoldingIRPF:  irpf,
			NetAmount:          gross - irpf,
			ToPayAmount:        gross - irpf,
		})
	}
	return out
}
