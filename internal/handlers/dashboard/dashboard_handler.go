// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"errors"
	"net/http"

	"referee-dashboard/internal/middleware"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/response"
	dashboardUsecase "referee-dashboard/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler serves the JSON view models of the dashboard pages.
// Every route sits behind the session guard.
type DashboardHandler struct {
	service *dashboardUsecase.DashboardService
	logger  *zap.Logger
}

func NewDashboardHandler(service *dashboardUsecase.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// Inicio GET /api/inicio/dashboard
func (h *DashboardHandler) Inicio(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	view, err := h.service.Inicio(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, dashboardUsecase.PageInicio, err, response.MsgInicioFailed)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Partidos GET /api/partidos/dashboard
func (h *DashboardHandler) Partidos(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	view, err := h.service.Partidos(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, dashboardUsecase.PagePartidos, err, response.MsgPartidosFailed)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Partido GET /api/partidos/:id
func (h *DashboardHandler) Partido(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	view, err := h.service.PartidoDetail(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) || errors.Is(err, xerrors.ErrInvalidInput) {
			response.NotFound(c, response.MsgPartidoNotFound)
			return
		}
		h.fail(c, dashboardUsecase.PagePartido, err, response.MsgPartidosFailed)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Liquidaciones GET /api/liquidaciones/dashboard
func (h *DashboardHandler) Liquidaciones(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	view, err := h.service.Liquidaciones(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, dashboardUsecase.PageLiquidaciones, err, response.MsgLiquidacionesFailed)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Perfil GET /api/perfil/dashboard. Upstream failures are shown inline by the page.
func (h *DashboardHandler) Perfil(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	view, err := h.service.Perfil(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, dashboardUsecase.PagePerfil, err, response.MsgPerfilFailed)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Designaciones GET /api/designaciones/dashboard
func (h *DashboardHandler) Designaciones(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	view, err := h.service.Designaciones(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, dashboardUsecase.PageDesignaciones, err, response.MsgDesignacionesFailed)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

func (h *DashboardHandler) fail(c *gin.Context, page string, err error, message string) {
	h.logger.Error("dashboard request failed",
		zap.String("page", page),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	_ = c.Error(err)
	response.Internal(c, message)
}
