// internal/websocket/client.go
package websocket

import (
	"context"
	"sync"
	"time"

	wstypes "bakery-popup/internal/domain/websocket"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	visitorID string

	// Context for graceful shutdown
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, visitorID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		visitorID: visitorID,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// VisitorID returns the storefront visitor this connection belongs to.
func (c *Client) VisitorID() string {
	return c.visitorID
}

// Context is cancelled when the client goes away.
func (c *Client) Context() context.Context {
	return c.ctx
}

// ReadPump handles incoming messages from client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed",
					zap.String("visitor_id", c.visitorID),
					zap.Error(err),
				)
			}
			return
		}

		c.handleMessage(message)
	}
}

// WritePump handles outgoing messages to client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from client
func (c *Client) handleMessage(data []byte) {
	msg, err := wstypes.ParseMessage(data)
	if err != nil {
		c.SendError("invalid_message", "Failed to parse message", err.Error())
		return
	}

	handled, err := c.hub.HandleClientMessage(c.ctx, c, msg)
	if err != nil {
		c.SendError("handler_error", "Failed to process message", err.Error())
		return
	}
	if handled {
		return
	}

	// Built-in message handling
	switch msg.Type {
	case wstypes.EventTypePing:
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))
	default:
		c.SendError("unsupported_event", ErrUnsupportedEvent.Error(), string(msg.Type))
	}
}

// SendMessage queues a message for the client. A client that cannot keep up
// is disconnected rather than allowed to block the sender.
func (c *Client) SendMessage(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		c.hub.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	select {
	case <-c.ctx.Done():
		return
	default:
	}

	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("websocket send buffer full, dropping client",
			zap.String("visitor_id", c.visitorID),
		)
		go c.hub.Unregister(c)
	}
}

// SendError sends an error message to the client
func (c *Client) SendError(code, message, details string) {
	c.SendMessage(wstypes.NewMessage(wstypes.EventTypeError, wstypes.ErrorData{
		Code:    code,
		Message: message,
		Details: details,
	}))
}

// Close stops the client's pumps. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(c.cancel)
}
