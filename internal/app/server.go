// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"referee-dashboard/internal/config"
	"referee-dashboard/internal/db"
	"referee-dashboard/internal/external"
	authHandler "referee-dashboard/internal/handlers/auth"
	dashboardHandler "referee-dashboard/internal/handlers/dashboard"
	designationHandler "referee-dashboard/internal/handlers/designation"
	pageHandler "referee-dashboard/internal/handlers/page"
	wsHandler "referee-dashboard/internal/handlers/websocket"
	"referee-dashboard/internal/middleware"
	"referee-dashboard/internal/pkg/jwt"
	"referee-dashboard/internal/pkg/metrics"
	"referee-dashboard/internal/pkg/session"
	"referee-dashboard/internal/repository/memory"
	"referee-dashboard/internal/repository/postgres"
	authUsecase "referee-dashboard/internal/service/auth"
	dashboardUsecase "referee-dashboard/internal/service/dashboard"
	"referee-dashboard/internal/service/datasource"
	"referee-dashboard/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// memoryCacheEntries bounds the in-process GET cache used without redis.
const memoryCacheEntries = 1024

type Server struct {
	cfg    config.AppConfig
	logger *zap.Logger

	engine *gin.Engine
	http   *http.Server
	redis  redis.UniversalClient
	db     *postgres.DB

	stopHub context.CancelFunc
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Build wires every dependency and returns the HTTP handler. Redis and
// PostgreSQL are optional; without them the in-memory stores are used.
func (s *Server) Build(ctx context.Context) (http.Handler, error) {
	if !s.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := s.logger

	// ----- Metrics -----
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// ----- Redis (optional) -----
	var cache external.Cache = external.NewMemoryCache(memoryCacheEntries, s.cfg.External.CacheTTL)
	var revocations session.RevocationStore = session.NewMemoryRevocationStore()
	var limiter session.LoginLimiter = session.NewMemoryRateLimiter(int(s.cfg.Login.MaxAttempts), s.cfg.Login.Window)

	if s.cfg.Redis.Enabled() {
		client, err := db.NewRedisClient(ctx, s.cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.redis = client
		cache = external.NewRedisCache(client)
		revocations = session.NewRedisRevocationStore(client)
		limiter = session.NewRateLimiter(client, int(s.cfg.Login.MaxAttempts), s.cfg.Login.Window)
		logger.Info("redis connected", zap.String("addr", s.cfg.Redis.Addr))
	} else {
		logger.Info("REDIS_ADDR not set, using in-memory cache and session stores")
	}

	// ----- PostgreSQL (optional) -----
	var downloads dashboardUsecase.DownloadLog = memory.NewDesignationDownloadRepository()
	if s.cfg.DatabaseURL != "" {
		pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.db = postgres.NewDB(pool)
		repo := postgres.NewDesignationDownloadRepository(s.db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		downloads = repo
		logger.Info("postgres connected, download log enabled")
	}

	// ----- Session tokens -----
	tokens, err := jwt.LoadAndBuild(s.cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to load session keys: %w", err)
	}
	sessionManager := session.NewManager(tokens, revocations)

	// ----- External API -----
	client := external.NewClient(s.cfg.External,
		external.WithCache(cache),
		external.WithMetrics(m),
		external.WithLogger(logger.Named("external")),
	)
	if !s.cfg.External.Configured() {
		logger.Warn("EXTERNAL_API_URL not set, every page serves mock data")
	} else if s.cfg.External.UseMock {
		logger.Warn("USE_MOCK_API enabled, every page serves mock data")
	}

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger.Named("ws"), m)
	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	go hub.Run(hubCtx)

	// ----- Services (Usecases) -----
	resolver := authUsecase.NewResolver(s.cfg.Operator, s.cfg.External.LoginURL, client, logger, m)
	authService := authUsecase.NewAuthService(resolver, sessionManager, limiter, hub, logger, m)
	selector := datasource.NewSelector(client, s.cfg.External)
	dashboardService := dashboardUsecase.NewDashboardService(selector, downloads, hub, logger, m)

	// ----- Handlers -----
	engine := gin.New()
	if err := engine.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	engine.SetHTMLTemplate(pageHandler.Templates())

	handlers := &Handlers{
		AuthHandler: authHandler.NewAuthHandler(authService, authHandler.CookieConfig{
			Name:   s.cfg.Session.CookieName,
			Secure: s.cfg.Session.CookieSecure,
			TTL:    sessionManager.TTL(),
		}, logger),
		DashboardHandler:   dashboardHandler.NewDashboardHandler(dashboardService, logger),
		DesignationHandler: designationHandler.NewDesignationHandler(dashboardService, logger),
		PageHandler:        pageHandler.NewPageHandler(),
		WSHandler:          wsHandler.NewWebSocketHandler(hub, logger),
		AuthMiddleware:     middleware.NewAuthMiddleware(authService, s.cfg.Session.CookieName, logger),
		Health:             s.health,
		Metrics:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}
	SetupRouter(engine, logger, handlers)

	s.engine = engine
	return engine, nil
}

// Start builds the server and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Build(ctx)
	if err != nil {
		return err
	}

	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP requests, closes sockets and releases the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.db != nil {
		s.db.Close()
	}
	return errors.Join(errs...)
}

// health reports the optional backing stores. A configured store that does
// not answer makes the service unhealthy.
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"redis": "disabled", "database": "disabled"}

	if s.redis != nil {
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			status = http.StatusServiceUnavailable
		}
	}
	if s.db != nil {
		checks["database"] = "ok"
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		}
	}

	mode := "api"
	if !s.cfg.External.Configured() || s.cfg.External.UseMock {
		mode = "fallback"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status": overall,
		"mode":   mode,
		"checks": checks,
	})
}
