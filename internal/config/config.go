// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig is built once at process start and handed to constructors.
// Nothing else in the service reads the environment.
type AppConfig struct {
	// Server
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`
	Env      string `env:"APP_ENV" envDefault:"production"`
	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the peer address is always the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	External ExternalAPIConfig
	Operator OperatorConfig
	Session  SessionConfig
	Login    LoginLimitConfig
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// DatabaseURL enables the designation download log when set.
	DatabaseURL string `env:"DATABASE_URL"`
}

// ExternalAPIConfig describes the federation backend.
type ExternalAPIConfig struct {
	BaseURL    string        `env:"EXTERNAL_API_URL"`
	APIKey     string        `env:"EXTERNAL_API_KEY"`
	LoginURL   string        `env:"EXTERNAL_API_LOGIN_URL"`
	Federation string        `env:"FEDERATION_HEADER" envDefault:"FBIB"`
	Timeout    time.Duration `env:"EXTERNAL_API_TIMEOUT" envDefault:"15s"`
	CacheTTL   time.Duration `env:"EXTERNAL_API_CACHE_TTL" envDefault:"5m"`
	UseMock    bool          `env:"USE_MOCK_API" envDefault:"false"`
}

// Configured reports whether a base URL for the federation backend is set.
func (c ExternalAPIConfig) Configured() bool {
	return c.BaseURL != ""
}

// OperatorConfig is the static operator account.
type OperatorConfig struct {
	Email        string `env:"CREDENTIALS_EMAIL"`
	Password     string `env:"CREDENTIALS_PASSWORD"`
	PasswordHash string `env:"CREDENTIALS_PASSWORD_HASH"`
}

// Enabled reports whether a complete operator credential pair is configured.
func (c OperatorConfig) Enabled() bool {
	return c.Email != "" && (c.Password != "" || c.PasswordHash != "")
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret         string        `env:"SESSION_SECRET"`
	PrivateKeyPath string        `env:"SESSION_PRIVATE_KEY_PATH"`
	PublicKeyPath  string        `env:"SESSION_PUBLIC_KEY_PATH"`
	KeyID          string        `env:"SESSION_KEY_ID" envDefault:"session-key"`
	Issuer         string        `env:"SESSION_ISSUER" envDefault:"referee-dashboard"`
	Audience       string        `env:"SESSION_AUDIENCE" envDefault:"referee-dashboard-web"`
	TTL            time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieName     string        `env:"SESSION_COOKIE_NAME" envDefault:"session-token"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

// UsesRSA reports whether RS256 key files are configured.
func (c SessionConfig) UsesRSA() bool {
	return c.PrivateKeyPath != "" && c.PublicKeyPath != ""
}

// LoginLimitConfig bounds credential attempts per client.
type LoginLimitConfig struct {
	MaxAttempts int64         `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	Window      time.Duration `env:"LOGIN_ATTEMPT_WINDOW" envDefault:"15m"`
}

// RedisConfig is optional; an empty Addr keeps every store in memory.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASS"`
	DB       int    `env:"DB" envDefault:"0"`
	PoolSize int    `env:"POOL_SIZE" envDefault:"10"`
}

// Enabled reports whether a redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Load reads AppConfig from the process environment.
func Load() (AppConfig, error) {
	return parse(env.Options{})
}

// LoadFrom reads AppConfig from the given variables only.
func LoadFrom(vars map[string]string) (AppConfig, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (AppConfig, error) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Sanitize normalises values loaded from env.
func (c *AppConfig) Sanitize() {
	c.External.BaseURL = strings.TrimRight(strings.TrimSpace(c.External.BaseURL), "/")
	c.External.LoginURL = strings.TrimSpace(c.External.LoginURL)
	if c.Session.TTL <= 0 {
		c.Session.TTL = 30 * 24 * time.Hour
	}
	if c.Login.MaxAttempts <= 0 {
		c.Login.MaxAttempts = 5
	}
	if c.Login.Window <= 0 {
		c.Login.Window = 15 * time.Minute
	}
}

// Validate rejects configurations the service cannot run with.
func (c AppConfig) Validate() error {
	var errs []error

	if c.Session.Secret == "" && !c.Session.UsesRSA() {
		errs = append(errs, errors.New("SESSION_SECRET or SESSION_PRIVATE_KEY_PATH/SESSION_PUBLIC_KEY_PATH is required"))
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}
	if c.External.BaseURL != "" {
		if err := validateHTTPURL(c.External.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("EXTERNAL_API_URL: %w", err))
		}
	}
	if c.External.LoginURL != "" {
		if err := validateHTTPURL(c.External.LoginURL); err != nil {
			errs = append(errs, fmt.Errorf("EXTERNAL_API_LOGIN_URL: %w", err))
		}
	}
	if c.Operator.Email != "" && c.Operator.Password == "" && c.Operator.PasswordHash == "" {
		errs = append(errs, errors.New("CREDENTIALS_EMAIL requires CREDENTIALS_PASSWORD or CREDENTIALS_PASSWORD_HASH"))
	}

	return errors.Join(errs...)
}

// IsDev reports whether the service runs in development mode.
func (c AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "development")
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
