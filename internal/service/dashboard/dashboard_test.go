package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"referee-dashboard/internal/config"
	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/domain/referee"
	"referee-dashboard/internal/external"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/metrics"
	"referee-dashboard/internal/service/datasource"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeDownloadLog struct {
	mu      sync.Mutex
	entries []referee.DesignationDownload
	err     error
}

func (f *fakeDownloadLog) Record(_ context.Context, d *referee.DesignationDownload) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *d)
	return nil
}

func (f *fakeDownloadLog) ListByUser(_ context.Context, userID string, limit int) ([]referee.DesignationDownload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []referee.DesignationDownload
	for _, e := range f.entries {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNotifier) NotifyDesignationDownloaded(userID, designationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, userID+":"+designationID)
}

type env struct {
	svc       *DashboardService
	metrics   *metrics.Metrics
	downloads *fakeDownloadLog
	notifier  *fakeNotifier
}

func newEnv(t *testing.T, baseURL string) *env {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	cfg := config.ExternalAPIConfig{BaseURL: baseURL, Federation: "FBIB", Timeout: 2 * time.Second}
	client := external.NewClient(cfg, external.WithMetrics(m))

	e := &env{metrics: m, downloads: &fakeDownloadLog{}, notifier: &fakeNotifier{}}
	e.svc = NewDashboardService(datasource.NewSelector(client, cfg), e.downloads, e.notifier, zaptest.NewLogger(t), m)
	return e
}

func upstream(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func refereeSession() *auth.Session {
	return &auth.Session{
		Identity: auth.Identity{
			ID:          "1234",
			Email:       "ana@fbib.es",
			Name:        "ANA maría Pérez Gil",
			AccessToken: "tok",
		},
		TokenID: "jti",
	}
}

func TestScenarioA_NoExternalURL(t *testing.T) {
	e := newEnv(t, "")
	sess := refereeSession()
	ctx := context.Background()

	inicio, err := e.svc.Inicio(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, inicio.Mode)
	assert.Equal(t, "Ana María", inicio.RefereeName)
	require.NotNil(t, inicio.NextMatch)
	assert.NotNil(t, inicio.DesignationsStatus)

	partidos, err := e.svc.Partidos(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, partidos.Mode)
	assert.NotEmpty(t, partidos.Matches)
	assert.Len(t, partidos.LogosByMatchID, len(partidos.Matches))

	detail, err := e.svc.PartidoDetail(ctx, sess, partidos.Matches[0].MatchID.String())
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, detail.Mode)

	liq, err := e.svc.Liquidaciones(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, liq.Mode)
	assert.NotEmpty(t, liq.Weekly)
	assert.NotEmpty(t, liq.Historico)

	perfil, err := e.svc.Perfil(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, perfil.Mode)
	assert.Equal(t, "ana@fbib.es", perfil.Data.Email)

	desig, err := e.svc.Designaciones(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, desig.Mode)

	_, err = e.svc.Documento(ctx, sess, "700101")
	assert.ErrorIs(t, err, xerrors.ErrUnavailable)

	// no fallback was counted: mock was the chosen source
	assert.Zero(t, testutil.CollectAndCount(e.metrics.Fallbacks))
}

func TestScenarioB_EmptyItems(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{ "items": [] }`)
	})
	e := newEnv(t, url)
	sess := refereeSession()
	ctx := context.Background()

	inicio, err := e.svc.Inicio(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, inicio.Mode)
	assert.Nil(t, inicio.NextMatch)
	assert.Nil(t, inicio.NextMatchDetail)
	require.NotNil(t, inicio.DesignationsStatus)
	assert.Empty(t, inicio.DesignationsStatus.Pending)

	partidos, err := e.svc.Partidos(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, partidos.Mode)
	assert.NotNil(t, partidos.Matches)
	assert.Empty(t, partidos.Matches)

	liq, err := e.svc.Liquidaciones(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, liq.Mode)
	assert.Empty(t, liq.Weekly)
	assert.Empty(t, liq.Historico)
	assert.Equal(t, referee.SettlementTotals{}, liq.WeeklyTotals)

	desig, err := e.svc.Designaciones(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, desig.Mode)
	assert.Equal(t, "No tienes designaciones descargadas en tu dispositivo", desig.DownloadedLabel)

	assert.Zero(t, testutil.CollectAndCount(e.metrics.Fallbacks))
}

func TestScenarioC_Upstream500(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	e := newEnv(t, url)
	sess := refereeSession()
	ctx := context.Background()

	inicio, err := e.svc.Inicio(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, inicio.Mode)
	assert.NotNil(t, inicio.NextMatch)

	partidos, err := e.svc.Partidos(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, partidos.Mode)
	assert.NotEmpty(t, partidos.Matches)

	liq, err := e.svc.Liquidaciones(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, liq.Mode)

	desig, err := e.svc.Designaciones(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, desig.Mode)

	detail, err := e.svc.PartidoDetail(ctx, sess, "900102")
	require.NoError(t, err)
	assert.Equal(t, referee.ModeFallback, detail.Mode)

	_, err = e.svc.PartidoDetail(ctx, sess, "123")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	// the profile page shows an inline error instead
	_, err = e.svc.Perfil(ctx, sess)
	require.Error(t, err)
	assert.Equal(t, external.KindUpstream, external.KindOf(err))
	assert.Contains(t, err.Error(), "500")

	for _, page := range []string{PageInicio, PagePartidos, PageLiquidaciones, PageDesignaciones, PagePartido} {
		assert.GreaterOrEqual(t, testutil.ToFloat64(e.metrics.Fallbacks.WithLabelValues(page)), float64(1), page)
	}
	assert.Zero(t, testutil.ToFloat64(e.metrics.Fallbacks.WithLabelValues(PagePerfil)))
}

func TestInicio_NextMatchAndLogos(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/my-referee/matches":
			_, _ = io.WriteString(w, `[
				{"matchId": 1, "matchDay": "2020-01-01T10:00:00"},
				{"matchId": 3, "matchDay": "2099-06-01T10:00:00"},
				{"matchId": 2, "matchDay": "2099-01-01T10:00:00"}
			]`)
		case "/auth/my-referee/designations/status":
			_, _ = io.WriteString(w, `{"downloaded":[{"designationId":1}],"pending":[]}`)
		case "/match/fitxa-partit/2":
			_, _ = io.WriteString(w, `{"messageData":{"match":{"idMatch":2,"localClubLogo":"l.png","visitorClubLogo":null}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	e := newEnv(t, url)

	inicio, err := e.svc.Inicio(context.Background(), refereeSession())
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, inicio.Mode)
	require.NotNil(t, inicio.NextMatch)
	assert.Equal(t, referee.ID("2"), inicio.NextMatch.MatchID)
	require.NotNil(t, inicio.NextMatchDetail)
	assert.Equal(t, "l.png", *inicio.NextMatchDetail.LocalClubLogo)
	assert.Nil(t, inicio.NextMatchDetail.VisitorClubLogo)
	assert.Len(t, inicio.DesignationsStatus.Downloaded, 1)
}

func TestPartidos_PartialEnrichment(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/my-referee/matches":
			_, _ = io.WriteString(w, `{"items":[{"matchId":10},{"matchId":11},{"matchId":12}]}`)
		case "/match/fitxa-partit/10":
			_, _ = io.WriteString(w, `{"messageData":{
				"match":{"idMatch":10,"localClubLogo":"a.png"},
				"designations":[
					{"refereeName":"Joan","refereeSurname":"Ferrer","refereeRole":"Árbitro auxiliar"},
					{"refereeName":"Ana María","refereeSurname":"Pérez Gil","refereeRole":"Árbitro principal"},
					{"refereeName":"Pere","refereeSurname":"Vidal","refereeRole":"Anotador"},
					{"refereeName":"Marta","refereeSurname":"Riera","refereeRole":"Principal"}
				]}}`)
		case "/match/fitxa-partit/11":
			_, _ = io.WriteString(w, `{"messageData":{"match":{"idMatch":11}}}`)
		default:
			http.Error(w, "nope", http.StatusBadGateway)
		}
	})
	e := newEnv(t, url)
	sess := refereeSession()
	sess.Name = "Ana María Pérez Gil"

	partidos, err := e.svc.Partidos(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, partidos.Mode)
	assert.Len(t, partidos.Matches, 3)

	assert.Contains(t, partidos.LogosByMatchID, "10")
	assert.Contains(t, partidos.LogosByMatchID, "11")
	assert.NotContains(t, partidos.LogosByMatchID, "12")

	assert.Equal(t, "Marta Riera, Joan Ferrer", partidos.CompanionsByMatchID["10"])
	assert.NotContains(t, partidos.CompanionsByMatchID, "11")
	assert.Zero(t, testutil.ToFloat64(e.metrics.Fallbacks.WithLabelValues(PagePartidos)))
}

func TestPartidoDetail_UpstreamNotFoundDoesNotFallBack(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	e := newEnv(t, url)

	// 900101 exists in the mock data, but a real 404 must stay a 404
	_, err := e.svc.PartidoDetail(context.Background(), refereeSession(), "900101")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.Zero(t, testutil.ToFloat64(e.metrics.Fallbacks.WithLabelValues(PagePartido)))
}

func TestPartidoDetail_SortsDesignations(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"messageData":{
			"match":{"idMatch":5,"localScore":70,"visitorScore":0,"nameField":"Pavelló","nameTown":"Palma"},
			"designations":[
				{"refereeName":"C","refereeSurname":"c","refereeRole":"Anotador"},
				{"refereeName":"B","refereeSurname":"b","refereeRole":"Auxiliar"},
				{"refereeName":"A","refereeSurname":"a","refereeRole":"Principal"}
			],
			"group":{"nameGroup":"Grupo B"}}}`)
	})
	e := newEnv(t, url)

	detail, err := e.svc.PartidoDetail(context.Background(), refereeSession(), "5")
	require.NoError(t, err)
	require.Len(t, detail.Designations, 3)
	assert.Equal(t, "A", detail.Designations[0].RefereeName)
	assert.Equal(t, "B", detail.Designations[1].RefereeName)
	assert.Equal(t, "C", detail.Designations[2].RefereeName)
	assert.True(t, detail.HasResult)
	assert.Equal(t, "Grupo B", detail.GroupName)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=Pavell%C3%B3%2C%20Palma", detail.MapsURL)
	assert.NotNil(t, detail.Standing)
}

func TestLiquidaciones_Totals(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/my-referee/preliquidation/weekly":
			_, _ = io.WriteString(w, `[
				{"grossAmount":10.1,"irpfRetentionAmount":1.51,"netAmount":8.59},
				{"grossAmount":20.2,"irpfRetentionAmount":3.03,"netAmount":17.17}
			]`)
		default:
			_, _ = io.WriteString(w, `{"messageData":[]}`)
		}
	})
	e := newEnv(t, url)

	liq, err := e.svc.Liquidaciones(context.Background(), refereeSession())
	require.NoError(t, err)
	assert.Equal(t, referee.SettlementTotals{Gross: 30.3, Irpf: 4.54, Net: 25.76}, liq.WeeklyTotals)
}

func TestPerfil_Items(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":8,"name":"Ana","lastName":"Pérez","email":"ana@fbib.es",
			"refereeNumber":321,"phoneParticular":"600111222","townName":"Palma","categoryName":"Nacional"}`)
	})
	e := newEnv(t, url)

	perfil, err := e.svc.Perfil(context.Background(), refereeSession())
	require.NoError(t, err)
	assert.Equal(t, referee.ModeAPI, perfil.Mode)
	assert.Equal(t, []referee.ProfileItem{
		{Label: "Nombre", Value: "Ana Pérez"},
		{Label: "Nº árbitro", Value: "321"},
		{Label: "Email", Value: "ana@fbib.es"},
		{Label: "Teléfono", Value: "600111222"},
		{Label: "Localidad", Value: "Palma"},
		{Label: "Categoría", Value: "Nacional"},
	}, perfil.Items)
}

func TestDocumento(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch string(body) {
		case `{"designationId":"missing"}`:
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7 doc"))
		}
	})
	e := newEnv(t, url)
	sess := refereeSession()
	ctx := context.Background()

	doc, err := e.svc.Documento(ctx, sess, "700102")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 doc"), doc)

	require.Len(t, e.downloads.entries, 1)
	assert.Equal(t, "1234", e.downloads.entries[0].UserID)
	assert.Equal(t, "700102", e.downloads.entries[0].DesignationID)
	assert.Equal(t, len(doc), e.downloads.entries[0].SizeBytes)
	assert.Equal(t, []string{"1234:700102"}, e.notifier.calls)

	history, err := e.svc.History(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, history.Downloads, 1)

	_, err = e.svc.Documento(ctx, sess, "missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = e.svc.Documento(ctx, sess, "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	noToken := refereeSession()
	noToken.AccessToken = ""
	_, err = e.svc.Documento(ctx, noToken, "700102")
	assert.ErrorIs(t, err, xerrors.ErrUnavailable)
}

func TestDocumento_DownloadLogFailureIsNotFatal(t *testing.T) {
	url := upstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pdf"))
	})
	e := newEnv(t, url)
	e.downloads.err = errors.New("db down")

	doc, err := e.svc.Documento(context.Background(), refereeSession(), "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), doc)

	_, err = e.svc.History(context.Background(), refereeSession())
	require.Error(t, err)
}
