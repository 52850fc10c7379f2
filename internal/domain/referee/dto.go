// internal/domain/referee/dto.go
package referee

// Mode tells the client where the payload came from.
type Mode string

const (
	ModeAPI      Mode = "api"
	ModeFallback Mode = "fallback"
)

// MatchLogos are the club crests shown on match cards.
type MatchLogos struct {
	LocalClubLogo   *string `json:"localClubLogo"`
	VisitorClubLogo *string `json:"visitorClubLogo"`
}

// InicioDashboard is the home page view model.
type InicioDashboard struct {
	Mode               Mode                `json:"mode"`
	RefereeName        string              `json:"refereeName"`
	DesignationsStatus *DesignationsStatus `json:"designationsStatus"`
	NextMatch          *MyMatchDesignation `json:"nextMatch"`
	NextMatchDetail    *MatchLogos         `json:"nextMatchDetail"`
}

// PartidosDashboard is the match list view model.
type PartidosDashboard struct {
	Mode                Mode                  `json:"mode"`
	Matches             []MyMatchDesignation  `json:"matches"`
	LogosByMatchID      map[string]MatchLogos `json:"logosByMatchId"`
	CompanionsByMatchID map[string]string     `json:"companionsByMatchId"`
}

// PartidoDetail is the single match view model.
type PartidoDetail struct {
	Mode         Mode                      `json:"mode"`
	Match        *FitxaPartitMatch         `json:"match"`
	Designations []FitxaPartitDesignation  `json:"designations"`
	Standing     []FitxaPartitStandingItem `json:"standing"`
	GroupName    string                    `json:"groupName,omitempty"`
	HasResult    bool                      `json:"hasResult"`
	MapsURL      string                    `json:"mapsUrl,omitempty"`
}

// SettlementTotals are computed server side for the settlement cards.
type SettlementTotals struct {
	Gross float64 `json:"gross"`
	Irpf  float64 `json:"irpf"`
	Net   float64 `json:"net"`
}

// LiquidacionesDashboard is the payments view model.
type LiquidacionesDashboard struct {
	Mode         Mode                       `json:"mode"`
	Weekly       []PreliquidationWeeklyItem `json:"weekly"`
	WeeklyTotals SettlementTotals           `json:"weeklyTotals"`
	Historico    []PaymentNotPending        `json:"historico"`
}

// ProfileItem is one labelled row of the profile card.
type ProfileItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PerfilDashboard is the profile view model.
type PerfilDashboard struct {
	Mode  Mode                `json:"mode"`
	Data  RefereePersonalData `json:"data"`
	Items []ProfileItem       `json:"items"`
}

// DesignacionesDashboard lists downloaded and pending designations.
type DesignacionesDashboard struct {
	Mode            Mode              `json:"mode"`
	Downloaded      []DesignationItem `json:"downloaded"`
	Pending         []DesignationItem `json:"pending"`
	DownloadedLabel string            `json:"downloadedLabel"`
}

// AcceptanceDocumentRequest is the body sent to the document endpoint.
type AcceptanceDocumentRequest struct {
	DesignationID string `json:"designationId"`
}

// DownloadHistory lists the documents the user fetched through the dashboard.
type DownloadHistory struct {
	Downloads []DesignationDownload `json:"downloads"`
}
