// internal/service/dashboard/format.go
package dashboard

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"referee-dashboard/internal/domain/referee"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultRefereeName = "árbitro"

// matchDayLayouts are the timestamp shapes seen in matchDay fields.
var matchDayLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// displayName keeps the first two words of name in Spanish title case.
func displayName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		words = []string{defaultRefereeName}
	}
	if len(words) > 2 {
		words = words[:2]
	}
	return cases.Title(language.Spanish).String(strings.Join(words, " "))
}

func parseMatchDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range matchDayLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nextMatch is the earliest match at or after now, else the earliest overall.
// Matches with an unreadable date sort last.
func nextMatch(matches []referee.MyMatchDesignation, now time.Time) *referee.MyMatchDesignation {
	if len(matches) == 0 {
		return nil
	}

	type dated struct {
		m  referee.MyMatchDesignation
		t  time.Time
		ok bool
	}
	sorted := make([]dated, 0, len(matches))
	for _, m := range matches {
		t, ok := parseMatchDay(m.MatchDay)
		sorted = append(sorted, dated{m: m, t: t, ok: ok})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ok != sorted[j].ok {
			return sorted[i].ok
		}
		return sorted[i].t.Before(sorted[j].t)
	})

	for _, d := range sorted {
		if d.ok && !d.t.Before(now) {
			m := d.m
			return &m
		}
	}
	m := sorted[0].m
	return &m
}

// isRefereeRole keeps officials who referee the game, not table officials.
func isRefereeRole(role string) bool {
	r := strings.ToLower(role)
	return strings.Contains(r, "arbitro") ||
		strings.Contains(r, "árbitro") ||
		strings.Contains(r, "principal") ||
		strings.Contains(r, "auxiliar")
}

// roleOrder puts the principal referee first, then the auxiliary.
func roleOrder(role string) int {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "principal"):
		return 0
	case strings.Contains(r, "auxiliar"):
		return 1
	default:
		return 2
	}
}

func sortDesignations(ds []referee.FitxaPartitDesignation) []referee.FitxaPartitDesignation {
	out := make([]referee.FitxaPartitDesignation, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool {
		return roleOrder(out[i].RefereeRole) < roleOrder(out[j].RefereeRole)
	})
	return out
}

// companionsLabel names the other referees of a match, or "Solo".
func companionsLabel(ds []referee.FitxaPartitDesignation, currentUser string) string {
	current := strings.ToLower(strings.TrimSpace(currentUser))

	var others []string
	for _, d := range sortDesignations(ds) {
		if !isRefereeRole(d.RefereeRole) {
			continue
		}
		full := strings.TrimSpace(strings.TrimSpace(d.RefereeName) + " " + strings.TrimSpace(d.RefereeSurname))
		if full == "" || strings.ToLower(full) == current {
			continue
		}
		others = append(others, full)
	}
	if len(others) == 0 {
		return "Solo"
	}
	return strings.Join(others, ", ")
}

func hasResult(m *referee.FitxaPartitMatch) bool {
	return m != nil && m.LocalScore != nil && m.VisitorScore != nil
}

// mapsURL is a Google Maps directions link to the venue, or "" without an address.
func mapsURL(m *referee.FitxaPartitMatch) string {
	if m == nil {
		return ""
	}
	address := joinNonEmpty(", ", m.NameField, m.AddressField, m.PostalCodeField, m.NameTown)
	if address == "" {
		return ""
	}
	return "https://www.google.com/maps/dir/?api=1&destination=" + strings.ReplaceAll(url.QueryEscape(address), "+", "%20")
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func downloadedLabel(n int) string {
	switch n {
	case 0:
		return "No tienes designaciones descargadas en tu dispositivo"
	case 1:
		return "1 designación descargada"
	default:
		return strconv.Itoa(n) + " designaciones descargadas"
	}
}
