package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"referee-dashboard/internal/config"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/metrics"

	"go.uber.org/zap"
)

const (
	HeaderFederation    = "Federation"
	HeaderAPIKey        = "X-API-Key"
	HeaderAuthorization = "Authorization"

	maxBodyBytes = 32 << 20
)

// BodyKind says how a 2xx response body was interpreted.
type BodyKind int

const (
	BodyText BodyKind = iota
	BodyJSON
)

// Request is one outbound call. Path is relative to the configured base URL
// unless it is an absolute http(s) URL.
type Request struct {
	Path        string
	Method      string
	Header      map[string]string
	Body        interface{}
	AccessToken string
}

// Response is a successful (2xx) upstream response.
type Response struct {
	Status int
	Header http.Header
	Kind   BodyKind
	JSON   json.RawMessage
	Text   string
	Cached bool
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v interface{}) error {
	if r.Kind != BodyJSON {
		return fmt.Errorf("response is not json")
	}
	return json.Unmarshal(r.JSON, v)
}

// Client is the single chokepoint for calls to the federation API. It adds
// the federation, API key and bearer headers, caches GET responses and turns
// every failure into an *APIError. It never retries.
type Client struct {
	baseURL    string
	apiKey     string
	federation string
	cacheTTL   time.Duration
	maxBody    int64

	http    *http.Client
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg config.ExternalAPIConfig, opts ...Option) *Client {
	federation := cfg.Federation
	if federation == "" {
		federation = "FBIB"
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		federation: federation,
		cacheTTL:   cfg.CacheTTL,
		maxBody:    maxBodyBytes,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Federation returns the tenant header value sent on every call.
func (c *Client) Federation() string {
	return c.federation
}

// Call performs req and returns the parsed 2xx response.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolve(req.Path)
	if err != nil {
		c.metrics.ObserveUpstream(method, string(KindConfig), 0)
		return nil, &APIError{Kind: KindConfig, Method: method, Path: req.Path, Err: err}
	}

	cacheable := method == http.MethodGet && c.cache != nil && c.cacheTTL > 0
	key := ""
	if cacheable {
		key = cacheKey(method, target, req.AccessToken)
		if resp, ok := c.fromCache(ctx, key); ok {
			return resp, nil
		}
	}

	started := time.Now()
	status, header, body, err := c.do(ctx, method, target, req.Path, req.Header, req.Body, req.AccessToken)
	if err != nil {
		c.observe(method, err, started)
		return nil, err
	}

	resp, err := parseBody(status, header, body)
	if err != nil {
		err = &APIError{Kind: KindDecode, Method: method, Path: req.Path, Status: status, Err: err}
		c.observe(method, err, started)
		return nil, err
	}
	c.observe(method, nil, started)

	if cacheable {
		c.toCache(ctx, key, status, header.Get("Content-Type"), body)
	}
	return resp, nil
}

// GetJSON performs a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path, accessToken string, out interface{}) error {
	resp, err := c.Call(ctx, Request{Path: path, Method: http.MethodGet, AccessToken: accessToken})
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return &APIError{Kind: KindDecode, Method: http.MethodGet, Path: path, Status: resp.Status, Err: err}
	}
	return nil
}

// FetchBinary POSTs body and returns the raw response bytes regardless of
// content type. A bearer token is mandatory.
func (c *Client) FetchBinary(ctx context.Context, path, accessToken string, body interface{}) ([]byte, error) {
	if accessToken == "" {
		return nil, &APIError{Kind: KindConfig, Method: http.MethodPost, Path: path, Err: ErrTokenRequired}
	}
	target, err := c.resolve(path)
	if err != nil {
		c.metrics.ObserveUpstream(http.MethodPost, string(KindConfig), 0)
		return nil, &APIError{Kind: KindConfig, Method: http.MethodPost, Path: path, Err: err}
	}

	started := time.Now()
	_, _, data, err := c.do(ctx, http.MethodPost, target, path, nil, body, accessToken)
	c.observe(http.MethodPost, err, started)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if c.baseURL == "" {
		return "", xerrors.ErrNotConfigured
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}

func (c *Client) headers(extra map[string]string, accessToken string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	for k, v := range extra {
		h.Set(k, v)
	}
	h.Set(HeaderFederation, c.federation)
	if c.apiKey != "" {
		h.Set(HeaderAPIKey, c.apiKey)
	}
	if accessToken != "" {
		h.Set(HeaderAuthorization, "Bearer "+accessToken)
	}
	return h
}

func (c *Client) do(ctx context.Context, method, target, path string, extra map[string]string, body interface{}, accessToken string) (int, http.Header, []byte, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return 0, nil, nil, &APIError{Kind: KindConfig, Method: method, Path: path, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, nil, &APIError{Kind: KindConfig, Method: method, Path: path, Err: err}
	}
	httpReq.Header = c.headers(extra, accessToken)

	res, err := c.http.Do(httpReq)
	if err != nil {
		kind := KindTransport
		if isTimeout(err) {
			kind = KindTimeout
		}
		return 0, nil, nil, &APIError{Kind: kind, Method: method, Path: path, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, c.maxBody+1))
	if err != nil {
		kind := KindTransport
		if isTimeout(err) {
			kind = KindTimeout
		}
		return 0, nil, nil, &APIError{Kind: kind, Method: method, Path: path, Status: res.StatusCode, Err: err}
	}
	if int64(len(data)) > c.maxBody {
		return 0, nil, nil, &APIError{
			Kind:   KindDecode,
			Method: method,
			Path:   path,
			Status: res.StatusCode,
			Err:    fmt.Errorf("response body exceeds %d bytes", c.maxBody),
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, res.Header, nil, &APIError{
			Kind:   KindUpstream,
			Method: method,
			Path:   path,
			Status: res.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}
	return res.StatusCode, res.Header, data, nil
}

func (c *Client) fromCache(ctx context.Context, key string) (*Response, bool) {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.metrics.CacheLookup("error")
		c.logger.Warn("external cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		c.metrics.CacheLookup("miss")
		return nil, false
	}
	entry, err := decodeCached(raw)
	if err != nil {
		c.metrics.CacheLookup("error")
		return nil, false
	}
	header := make(http.Header)
	header.Set("Content-Type", entry.ContentType)
	resp, err := parseBody(entry.Status, header, entry.Body)
	if err != nil {
		c.metrics.CacheLookup("error")
		return nil, false
	}
	c.metrics.CacheLookup("hit")
	resp.Cached = true
	return resp, true
}

func (c *Client) toCache(ctx context.Context, key string, status int, contentType string, body []byte) {
	raw, err := encodeCached(cachedResponse{Status: status, ContentType: contentType, Body: body})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		c.logger.Warn("external cache write failed", zap.Error(err))
	}
}

func (c *Client) observe(method string, err error, started time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		c.logger.Debug("external call failed",
			zap.String("method", method),
			zap.String("kind", outcome),
			zap.Int("status", StatusOf(err)),
		)
	}
	c.metrics.ObserveUpstream(method, outcome, time.Since(started).Seconds())
}

func parseBody(status int, header http.Header, body []byte) (*Response, error) {
	resp := &Response{Status: status, Header: header}
	if strings.Contains(header.Get("Content-Type"), "application/json") {
		if len(bytes.TrimSpace(body)) == 0 {
			resp.Kind = BodyJSON
			resp.JSON = json.RawMessage("null")
			return resp, nil
		}
		if !json.Valid(body) {
			return nil, errors.New("invalid json body")
		}
		resp.Kind = BodyJSON
		resp.JSON = json.RawMessage(body)
		return resp, nil
	}
	resp.Kind = BodyText
	resp.Text = string(body)
	return resp, nil
}

func encodeBody(body interface{}) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
