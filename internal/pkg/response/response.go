// internal/pkg/response/response.go
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON error object returned by every API endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends a successful payload. A zero status means 200.
func JSON(c *gin.Context, status int, payload interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, payload)
}

// Error aborts the chain and sends {"error": message}.
func Error(c *gin.Context, code int, message string) {
	// Abort before writing so later handlers never run.
	c.Abort()
	c.JSON(code, ErrorBody{Error: message})
}

// Unauthorized sends a 401 with the standard Spanish message.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, MsgUnauthorized)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Internal sends a 500 with a page-specific message.
func Internal(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// User-facing messages.
const (
	MsgUnauthorized        = "No autorizado"
	MsgInvalidCredentials  = "Credenciales incorrectas."
	MsgTooManyAttempts     = "Demasiados intentos. Inténtalo más tarde."
	MsgInternal            = "Error interno del servidor"
	MsgInicioFailed        = "No se pudo cargar el inicio"
	MsgPartidosFailed      = "No se pudieron cargar los partidos"
	MsgPartidoNotFound     = "Partido no encontrado"
	MsgLiquidacionesFailed = "No se pudieron cargar las liquidaciones"
	MsgPerfilFailed        = "No se pudieron cargar los datos"
	MsgDesignacionesFailed = "No se pudieron cargar las designaciones."
	MsgDocumentoFailed     = "No se pudo descargar el documento de la designación."
	MsgRequiresExternalAPI = "Esta sección solo está disponible con la API externa configurada."
	MsgHistorialFailed     = "No se pudo cargar el historial de descargas"
)
