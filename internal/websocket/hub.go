// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "bakery-popup/internal/domain/websocket"

	"go.uber.org/zap"
)

// Hub tracks connected storefront visitors. A visitor may hold several
// connections (one per open tab), each with its own popup session.
type Hub struct {
	// Registered clients by visitor ID
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Handler registry for modular message handling
	handlerRegistry *HandlerRegistry

	done     chan struct{}
	doneOnce sync.Once
	logger   *zap.Logger
}

// BroadcastMessage targets VisitorIDs, or every client when VisitorIDs is nil.
type BroadcastMessage struct {
	VisitorIDs []string
	Message    *wstypes.WSMessage
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		done:            make(chan struct{}),
		logger:          logger,
	}
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage routes a client message to the handler registered for
// its type. It reports whether a handler was found.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// Unregister detaches a client without blocking once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.visitorID] == nil {
		h.clients[client.visitorID] = make(map[*Client]bool)
	}
	h.clients[client.visitorID][client] = true
	total := h.totalClients()
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("visitor_id", client.visitorID),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"visitorId": client.visitorID,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.clients[client.visitorID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.visitorID)
	}
	total := h.totalClients()
	h.mu.Unlock()

	// Close first: cancelling the client context stops handlers from
	// attaching new state before Disconnect cleans up.
	client.Close()
	h.handlerRegistry.Disconnect(client)

	h.logger.Info("websocket client disconnected",
		zap.String("visitor_id", client.visitorID),
		zap.Int("total", total),
	)
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.VisitorIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				client.SendMessage(msg.Message)
			}
		}
		return
	}

	for _, visitorID := range msg.VisitorIDs {
		for client := range h.clients[visitorID] {
			client.SendMessage(msg.Message)
		}
	}
}

// BroadcastFeedUpdated tells every connected storefront that the offers
// changed so the next activation picks them up.
func (h *Hub) BroadcastFeedUpdated() {
	msg := wstypes.NewMessage(wstypes.EventTypePopupFeedUpdated, nil)
	select {
	case h.broadcast <- &BroadcastMessage{Message: msg}:
	case <-h.done:
	default:
		h.logger.Warn("broadcast queue full, dropping feed update")
	}
}

func (h *Hub) GetConnectedClients(visitorID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[visitorID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	all := h.clients
	h.clients = make(map[string]map[*Client]bool)
	h.mu.Unlock()

	for _, clients := range all {
		for client := range clients {
			client.Close()
			h.handlerRegistry.Disconnect(client)
		}
	}
}
