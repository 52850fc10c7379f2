// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"
	"time"

	wstypes "referee-dashboard/internal/domain/websocket"
	"referee-dashboard/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Hub tracks the open dashboard sockets of each signed-in user.
type Hub struct {
	// Registered clients by user id
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	register   chan *Client
	unregister chan *Client

	// done is closed once Run has returned.
	done     chan struct{}
	doneOnce sync.Once

	// Broadcasting
	broadcast chan *BroadcastMessage

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// BroadcastMessage targets the clients of UserIDs (all users when nil).
// A non-empty SessionID narrows delivery to sockets opened with that session.
type BroadcastMessage struct {
	UserIDs   []string
	SessionID string
	Channel   wstypes.ChannelType
	Message   *wstypes.WSMessage
	// Disconnect closes matching clients after delivery.
	Disconnect bool
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		broadcast:  make(chan *BroadcastMessage, 256),
		logger:     logger,
		metrics:    m,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.doneOnce.Do(func() { close(h.done) })
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// Register hands client to the running hub. It fails with ErrHubClosed
// once Run has returned.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) unregisterAsync(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	h.metrics.WSConnected(1)

	h.logger.Info("websocket client connected",
		zap.String("user_id", client.userID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id":  client.userID,
		"channels": client.Channels(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	client.Close()
	h.metrics.WSConnected(-1)

	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info("websocket client disconnected",
		zap.String("user_id", client.userID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)
}

// BroadcastMessage delivers msg synchronously. Run calls it for queued messages.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*Client
	collect := func(clients map[*Client]bool) {
		for client := range clients {
			if msg.SessionID != "" && client.sessionID != msg.SessionID {
				continue
			}
			if client.IsSubscribed(msg.Channel) {
				targets = append(targets, client)
			}
		}
	}

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			collect(clients)
		}
	} else {
		for _, userID := range msg.UserIDs {
			collect(h.clients[userID])
		}
	}

	for _, client := range targets {
		if !client.SendMessage(msg.Message) || msg.Disconnect {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) GetConnectedClients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// ForceLogout tells every socket opened with sessionID that it was signed
// out, then drops those sockets.
func (h *Hub) ForceLogout(userID, sessionID, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		SessionID: sessionID,
		Reason:    reason,
		Message:   "Tu sesión se ha cerrado",
	})
	h.enqueue(&BroadcastMessage{
		UserIDs:    []string{userID},
		SessionID:  sessionID,
		Channel:    wstypes.ChannelSession,
		Message:    msg,
		Disconnect: true,
	})
}

// NotifyDesignationDownloaded lets the user's other tabs refresh their designation lists.
func (h *Hub) NotifyDesignationDownloaded(userID, designationID string) {
	msg := wstypes.NewMessage(wstypes.EventTypeDesignationDownloaded, wstypes.DesignationEventData{
		DesignationID: designationID,
		DownloadedAt:  time.Now(),
	})
	h.enqueue(&BroadcastMessage{
		UserIDs: []string{userID},
		Channel: wstypes.ChannelDesignations,
		Message: msg,
	})
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message",
			zap.String("type", string(msg.Message.Type)),
		)
	}
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID string) bool {
	return h.GetConnectedClients(userID) > 0
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			client.Close()
			h.metrics.WSConnected(-1)
		}
		delete(h.clients, userID)
	}
}
