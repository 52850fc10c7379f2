package external

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"referee-dashboard/internal/config"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	cfg := config.ExternalAPIConfig{
		BaseURL:    baseURL,
		Federation: "FBIB",
		Timeout:    2 * time.Second,
		CacheTTL:   5 * time.Minute,
	}
	return NewClient(cfg, opts...)
}

func TestClient_Call_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	t.Run("no token means no authorization header", func(t *testing.T) {
		c := newTestClient(t, srv.URL)
		_, err := c.Call(context.Background(), Request{Path: "/auth/my-referee/matches"})
		require.NoError(t, err)

		assert.Equal(t, "FBIB", got.Get(HeaderFederation))
		assert.Empty(t, got.Values(HeaderAuthorization))
		assert.Empty(t, got.Values(HeaderAPIKey))
	})

	t.Run("token is sent as bearer", func(t *testing.T) {
		c := newTestClient(t, srv.URL)
		_, err := c.Call(context.Background(), Request{Path: "matches", AccessToken: "tok-123"})
		require.NoError(t, err)

		assert.Equal(t, "Bearer tok-123", got.Get(HeaderAuthorization))
	})

	t.Run("api key and caller headers", func(t *testing.T) {
		c := NewClient(config.ExternalAPIConfig{BaseURL: srv.URL, APIKey: "key-1", Federation: "FCF"})
		_, err := c.Call(context.Background(), Request{
			Path:   "matches",
			Header: map[string]string{"X-Trace": "abc", HeaderFederation: "OTHER"},
		})
		require.NoError(t, err)

		assert.Equal(t, "key-1", got.Get(HeaderAPIKey))
		assert.Equal(t, "abc", got.Get("X-Trace"))
		assert.Equal(t, "FCF", got.Get(HeaderFederation))
	})
}

func TestClient_Call_ResponseKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = io.WriteString(w, `{"items":[]}`)
		case "/text":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "pong")
		case "/broken":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"items":`)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	resp, err := c.Call(context.Background(), Request{Path: "json"})
	require.NoError(t, err)
	assert.Equal(t, BodyJSON, resp.Kind)
	assert.JSONEq(t, `{"items":[]}`, string(resp.JSON))

	resp, err = c.Call(context.Background(), Request{Path: "text"})
	require.NoError(t, err)
	assert.Equal(t, BodyText, resp.Kind)
	assert.Equal(t, "pong", resp.Text)

	_, err = c.Call(context.Background(), Request{Path: "broken"})
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestClient_Call_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{400, 401, 404, 500, 503} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = io.WriteString(w, "boom")
			}))
			defer srv.Close()

			resp, err := newTestClient(t, srv.URL).Call(context.Background(), Request{Path: "x", AccessToken: "t"})
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, KindUpstream, KindOf(err))
			assert.Equal(t, status, StatusOf(err))
			assert.Contains(t, err.Error(), strconv.Itoa(status))
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestClient_Call_EmptyErrorBodyUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Call(context.Background(), Request{Path: "x"})
	require.Error(t, err)
	assert.Equal(t, "API externa error 502: Bad Gateway", err.Error())
}

func TestClient_Call_NotConfigured(t *testing.T) {
	c := newTestClient(t, "")

	_, err := c.Call(context.Background(), Request{Path: "auth/my-referee/matches"})
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.True(t, errors.Is(err, xerrors.ErrNotConfigured))
	assert.False(t, c.Configured())
}

func TestClient_Call_AbsoluteURLWithoutBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Authorization", "Bearer abc")
	}))
	defer srv.Close()

	c := newTestClient(t, "")
	resp, err := c.Call(context.Background(), Request{Path: srv.URL + "/login", Method: "post", Body: map[string]string{"username": "u"}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", resp.Header.Get("Authorization"))
}

func TestClient_Call_CachesGET(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[1,2,3]`)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := newTestClient(t, srv.URL, WithCache(NewMemoryCache(0, 5*time.Minute)), WithMetrics(m))
	ctx := context.Background()

	first, err := c.Call(ctx, Request{Path: "matches", AccessToken: "a"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := c.Call(ctx, Request{Path: "matches", AccessToken: "a"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.JSONEq(t, `[1,2,3]`, string(second.JSON))
	assert.Equal(t, int32(1), hits.Load())

	_, err = c.Call(ctx, Request{Path: "matches", AccessToken: "b"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "cache is scoped per token")

	_, err = c.Call(ctx, Request{Path: "matches", Method: http.MethodPost, AccessToken: "a"})
	require.NoError(t, err)
	_, err = c.Call(ctx, Request{Path: "matches", Method: http.MethodPost, AccessToken: "a"})
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load(), "POST is never cached")

	_, err = c.Call(ctx, Request{Path: "fail", AccessToken: "a"})
	require.Error(t, err)
	_, err = c.Call(ctx, Request{Path: "fail", AccessToken: "a"})
	require.Error(t, err)
	assert.Equal(t, int32(6), hits.Load(), "failures are never cached")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("GET", "upstream")))
}

func TestClient_Call_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(config.ExternalAPIConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Call(context.Background(), Request{Path: "slow"})
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestClient_Call_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Call(context.Background(), Request{Path: "x"})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestClient_FetchBinary(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get(HeaderAuthorization))
		assert.Equal(t, "FBIB", r.Header.Get(HeaderFederation))
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"designationId":"77"}` {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, "bad body")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(pdf)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	data, err := c.FetchBinary(context.Background(), "auth/my-referee/designations/accept", "tok", map[string]string{"designationId": "77"})
	require.NoError(t, err)
	assert.Equal(t, pdf, data)

	_, err = c.FetchBinary(context.Background(), "auth/my-referee/designations/accept", "tok", map[string]string{"designationId": "1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Contains(t, err.Error(), "400")

	_, err = c.FetchBinary(context.Background(), "auth/my-referee/designations/accept", "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenRequired))
}

func TestClient_FetchBinary_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 0123456789"))
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	c.maxBody = 8

	data, err := c.FetchBinary(context.Background(), "auth/my-referee/designations/accept", "tok", map[string]string{"designationId": "77"})
	require.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, KindDecode, KindOf(err))

	c.maxBody = 64
	data, err = c.FetchBinary(context.Background(), "auth/my-referee/designations/accept", "tok", map[string]string{"designationId": "77"})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 0123456789"), data)
}
