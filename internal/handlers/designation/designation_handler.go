// internal/handlers/designation/designation_handler.go
package designation

import (
	"errors"
	"mime"
	"net/http"

	"referee-dashboard/internal/middleware"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/response"
	dashboardUsecase "referee-dashboard/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

type DesignationHandler struct {
	service *dashboardUsecase.DashboardService
	logger  *zap.Logger
}

func NewDesignationHandler(service *dashboardUsecase.DashboardService, logger *zap.Logger) *DesignationHandler {
	return &DesignationHandler{
		service: service,
		logger:  logger,
	}
}

// Documento POST /api/designaciones/:id/documento returns the acceptance document.
func (h *DesignationHandler) Documento(c *gin.Context) {
	sess := middleware.MustGetSession(c)
	designationID := c.Param("id")

	doc, err := h.service.Documento(c.Request.Context(), sess, designationID)
	switch {
	case err == nil:
	case errors.Is(err, xerrors.ErrUnavailable):
		response.Error(c, http.StatusConflict, response.MsgRequiresExternalAPI)
		return
	case errors.Is(err, xerrors.ErrNotFound), errors.Is(err, xerrors.ErrInvalidInput):
		response.NotFound(c, response.MsgDocumentoFailed)
		return
	default:
		_ = c.Error(err)
		response.Internal(c, response.MsgDocumentoFailed)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": "designacion-" + designationID + ".pdf",
	}))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, pdfContentType, doc)
}

// Historial GET /api/designaciones/historial lists documents downloaded here.
func (h *DesignationHandler) Historial(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	history, err := h.service.History(c.Request.Context(), sess)
	if err != nil {
		h.logger.Error("failed to load download history",
			zap.String("user_id", sess.ID),
			zap.Error(err),
		)
		response.Internal(c, response.MsgHistorialFailed)
		return
	}
	response.JSON(c, http.StatusOK, history)
}
