// internal/app/router.go
package app

import (
	"net/http"

	authHandler "referee-dashboard/internal/handlers/auth"
	dashboardHandler "referee-dashboard/internal/handlers/dashboard"
	designationHandler "referee-dashboard/internal/handlers/designation"
	pageHandler "referee-dashboard/internal/handlers/page"
	wsHandler "referee-dashboard/internal/handlers/websocket"
	"referee-dashboard/internal/middleware"
	"referee-dashboard/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler        *authHandler.AuthHandler
	DashboardHandler   *dashboardHandler.DashboardHandler
	DesignationHandler *designationHandler.DesignationHandler
	PageHandler        *pageHandler.PageHandler
	WSHandler          *wsHandler.WebSocketHandler
	AuthMiddleware     *middleware.AuthMiddleware
	Health             gin.HandlerFunc
	Metrics            http.Handler
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	// The guard runs on every route, including unknown ones.
	r.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		h.AuthMiddleware.Session(),
		h.AuthMiddleware.Guard(),
	)

	// ==================== Public ====================
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.Metrics))

	// ==================== Pages ====================
	r.GET(middleware.LoginPath, h.PageHandler.Login)
	r.GET("/", h.PageHandler.Shell(pageHandler.Page{Title: "Inicio", Endpoint: "/api/inicio/dashboard"}))
	r.GET("/partidos", h.PageHandler.Shell(pageHandler.Page{Title: "Partidos", Endpoint: "/api/partidos/dashboard"}))
	r.GET("/partidos/:id", h.PageHandler.Shell(pageHandler.Page{Title: "Partido", Endpoint: "/api/partidos/"}))
	r.GET("/liquidaciones", h.PageHandler.Shell(pageHandler.Page{Title: "Liquidaciones", Endpoint: "/api/liquidaciones/dashboard"}))
	r.GET("/perfil", h.PageHandler.Shell(pageHandler.Page{Title: "Perfil", Endpoint: "/api/perfil/dashboard"}))
	r.GET("/designaciones-descargadas", h.PageHandler.Shell(pageHandler.Page{Title: "Designaciones", Endpoint: "/api/designaciones/dashboard"}))

	api := r.Group("/api")

	// ==================== Auth (always reachable) ====================
	auth := api.Group("/auth")
	{
		auth.POST("/callback/credentials", h.AuthHandler.CredentialsCallback)
		auth.POST("/signout", h.AuthHandler.SignOut)
		auth.GET("/session", h.AuthHandler.Session)
	}

	// ==================== Dashboard ====================
	api.GET("/inicio/dashboard", h.DashboardHandler.Inicio)
	api.GET("/partidos/dashboard", h.DashboardHandler.Partidos)
	api.GET("/partidos/:id", h.DashboardHandler.Partido)
	api.GET("/liquidaciones/dashboard", h.DashboardHandler.Liquidaciones)
	api.GET("/perfil/dashboard", h.DashboardHandler.Perfil)

	// ==================== Designations ====================
	designations := api.Group("/designaciones")
	{
		designations.GET("/dashboard", h.DashboardHandler.Designaciones)
		designations.GET("/historial", h.DesignationHandler.Historial)
		designations.POST("/:id/documento", h.DesignationHandler.Documento)
	}

	// ==================== WebSocket ====================
	api.GET("/ws", h.WSHandler.HandleConnection)
	api.GET("/ws/stats", h.WSHandler.GetStats)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Ruta no encontrada")
	})
}
