// internal/domain/referee/entity.go
package referee

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ID accepts both JSON numbers and strings; the federation API is not
// consistent about which one it sends.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// MyMatchDesignation is one match the referee is designated for.
type MyMatchDesignation struct {
	MatchID             ID     `json:"matchId"`
	DesignationID       ID     `json:"designationId,omitempty"`
	MatchDay            string `json:"matchDay"`
	FormattedMatchDay   string `json:"formattedMatchDay,omitempty"`
	CategoryName        string `json:"categoryName,omitempty"`
	CompetitionName     string `json:"competitionName,omitempty"`
	LocalTeamName       string `json:"localTeamName,omitempty"`
	VisitorTeamName     string `json:"visitorTeamName,omitempty"`
	InstallationName    string `json:"installationName,omitempty"`
	InstallationAddress string `json:"installationAddress,omitempty"`
	Town                string `json:"town,omitempty"`
	RefereeRole         string `json:"refereeRole,omitempty"`
}

// DesignationItem is an entry of the designation status lists.
type DesignationItem struct {
	DesignationID    ID     `json:"designationId,omitempty"`
	MatchID          ID     `json:"matchId,omitempty"`
	MatchDay         string `json:"matchDay,omitempty"`
	InstallationID   ID     `json:"installationId,omitempty"`
	InstallationName string `json:"installationName,omitempty"`
	LocalTeamName    string `json:"localTeamName,omitempty"`
	VisitorTeamName  string `json:"visitorTeamName,omitempty"`
	CategoryName     string `json:"categoryName,omitempty"`
	RefereeRole      string `json:"refereeRole,omitempty"`
}

// DesignationsStatus splits designations by whether the acceptance
// document has already been downloaded.
type DesignationsStatus struct {
	Downloaded []DesignationItem `json:"downloaded"`
	Pending    []DesignationItem `json:"pending"`
}

// MatchDetail is the "fitxa partit" document for a single match.
type MatchDetail struct {
	MessageData *MatchDetailData `json:"messageData,omitempty"`
}

type MatchDetailData struct {
	Match        *FitxaPartitMatch         `json:"match,omitempty"`
	Designations []FitxaPartitDesignation  `json:"designations,omitempty"`
	Standing     []FitxaPartitStandingItem `json:"standing,omitempty"`
	Group        *FitxaPartitGroup         `json:"group,omitempty"`
}

type FitxaPartitMatch struct {
	IDMatch          ID       `json:"idMatch,omitempty"`
	MatchDay         string   `json:"matchDay,omitempty"`
	NumMatchDay      *int     `json:"numMatchDay,omitempty"`
	NameCompetition  string   `json:"nameCompetition,omitempty"`
	NameCategory     string   `json:"nameCategory,omitempty"`
	IDLocalTeam      ID       `json:"idLocalTeam,omitempty"`
	IDVisitorTeam    ID       `json:"idVisitorTeam,omitempty"`
	NameLocalTeam    string   `json:"nameLocalTeam,omitempty"`
	NameVisitorTeam  string   `json:"nameVisitorTeam,omitempty"`
	LocalScore       *int     `json:"localScore,omitempty"`
	VisitorScore     *int     `json:"visitorScore,omitempty"`
	LocalClubLogo    *string  `json:"localClubLogo,omitempty"`
	VisitorClubLogo  *string  `json:"visitorClubLogo,omitempty"`
	NameField        string   `json:"nameField,omitempty"`
	AddressField     string   `json:"addressField,omitempty"`
	PostalCodeField  string   `json:"postalCodeField,omitempty"`
	NameTown         string   `json:"nameTown,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

type FitxaPartitDesignation struct {
	RefereeName    string `json:"refereeName"`
	RefereeSurname string `json:"refereeSurname"`
	RefereeRole    string `json:"refereeRole,omitempty"`
}

type FitxaPartitStandingItem struct {
	Position int    `json:"position"`
	TeamName string `json:"teamName"`
	Points   int    `json:"points"`
	Played   int    `json:"played,omitempty"`
	Won      int    `json:"won,omitempty"`
	Lost     int    `json:"lost,omitempty"`
}

type FitxaPartitGroup struct {
	NameGroup string `json:"nameGroup,omitempty"`
}

// PreliquidationWeeklyItem is one line of the current week's settlement.
type PreliquidationWeeklyItem struct {
	LiquidationID       ID      `json:"liquidationId,omitempty"`
	MatchDate           string  `json:"matchDate,omitempty"`
	FormattedMatchDate  string  `json:"formattedMatchDate,omitempty"`
	LocalTeamName       string  `json:"localTeamName,omitempty"`
	VisitorTeamName     string  `json:"visitorTeamName,omitempty"`
	CategoryName        string  `json:"categoryName,omitempty"`
	ConceptLiteral      string  `json:"conceptLiteral,omitempty"`
	GrossAmount         float64 `json:"grossAmount"`
	IrpfRetentionAmount float64 `json:"irpfRetentionAmount"`
	NetAmount           float64 `json:"netAmount"`
}

// PaymentNotPending is a settled payment period. "grosAmount" is spelled
// the way the federation API spells it.
type PaymentNotPending struct {
	IDPayment          ID      `json:"idPayment,omitempty"`
	InitialControlDate string  `json:"initialControlDate,omitempty"`
	FinalControlDate   string  `json:"finalControlDate,omitempty"`
	GrossAmount        float64 `json:"grosAmount"`
	AmountHoldingIRPF  float64 `json:"amountHoldingIRPF"`
	NetAmount          float64 `json:"netAmount"`
	ToPayAmount        float64 `json:"toPayAmount"`
}

// RefereePersonalData is the referee's profile as returned by the API.
type RefereePersonalData struct {
	ID              ID     `json:"id,omitempty"`
	UserID          ID     `json:"userId,omitempty"`
	Name            string `json:"name,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty"`
	RefereeNumber   ID     `json:"refereeNumber,omitempty"`
	PhoneMobile     string `json:"phoneMobile,omitempty"`
	PhoneParticular string `json:"phoneParticular,omitempty"`
	PhoneWork       string `json:"phoneWork,omitempty"`
	Address         string `json:"address,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	TownName        string `json:"townName,omitempty"`
	CategoryName    string `json:"categoryName,omitempty"`
}

// FullName joins name and last name, skipping empty parts.
func (p RefereePersonalData) FullName() string {
	return joinNonEmpty(" ", p.Name, p.LastName)
}

// Phone returns the first available phone number.
func (p RefereePersonalData) Phone() string {
	for _, v := range []string{p.PhoneMobile, p.PhoneParticular, p.PhoneWork} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Location joins address, postal code and town.
func (p RefereePersonalData) Location() string {
	return joinNonEmpty(", ", p.Address, p.PostalCode, p.TownName)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// DesignationDownload records one acceptance document fetched through the dashboard.
type DesignationDownload struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"userId"`
	DesignationID string    `json:"designationId"`
	SizeBytes     int       `json:"sizeBytes"`
	DownloadedAt  time.Time `json:"downloadedAt"`
}
