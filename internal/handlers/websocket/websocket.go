// internal/handlers/websocket/websocket.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"bakery-popup/internal/pkg/response"
	ws "bakery-popup/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" or an
// empty list allows any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// HandleConnection upgrades a storefront visitor. Visitors are anonymous: a
// valid ULID in ?visitor= is reused, anything else gets a fresh one.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	visitorID := c.Query("visitor")
	if _, err := ulid.ParseStrict(visitorID); err != nil {
		visitorID = ulid.Make().String()
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, visitorID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetStats returns WebSocket connection statistics (operator only)
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	}

	response.Success(c, http.StatusOK, "WebSocket stats", stats)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[strings.TrimRight(o, "/")] = true
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin.
		return origin == "" || set[strings.TrimRight(origin, "/")]
	}
}
