// internal/handlers/websocket/websocket.go
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"referee-dashboard/internal/middleware"
	"referee-dashboard/internal/pkg/response"
	ws "referee-dashboard/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin allows requests without an Origin header (non-browser clients)
// and browser requests from this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// HandleConnection upgrades a signed-in request. The session comes from the
// session cookie, loaded by the auth middleware.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client, err := ws.NewClient(h.hub, conn, &ws.ClientAuth{
		UserID:    sess.ID,
		SessionID: sess.TokenID,
		Email:     sess.Email,
	})
	if err != nil {
		h.logger.Error("WebSocket client rejected", zap.Error(err))
		_ = conn.Close()
		return
	}

	if err := h.hub.Register(client); err != nil {
		h.logger.Warn("WebSocket client dropped", zap.Error(err))
		client.Close()
		_ = conn.Close()
		return
	}

	h.logger.Info("WebSocket client connected",
		zap.String("user_id", sess.ID),
		zap.String("session_id", sess.TokenID),
	)

	go client.WritePump()
	go client.ReadPump()
}

// GetStats returns WebSocket connection statistics
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	sess := middleware.MustGetSession(c)

	response.JSON(c, http.StatusOK, gin.H{
		"total_connections": h.hub.TotalClients(),
		"user_connections":  h.hub.GetConnectedClients(sess.ID),
		"timestamp":         time.Now().UTC(),
	})
}
