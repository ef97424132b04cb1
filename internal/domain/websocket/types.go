// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"bakery-popup/internal/domain/popup"

	"github.com/oklog/ulid/v2"
)

// EventType names a realtime event.
type EventType string

const (
	// Connection events
	EventTypePing      EventType = "ping"
	EventTypePong      EventType = "pong"
	EventTypeConnected EventType = "connected"
	EventTypeError     EventType = "error"

	// Popup events (client -> server)
	EventTypePopupOpen    EventType = "popup:open"
	EventTypePopupClose   EventType = "popup:close"
	EventTypePopupDismiss EventType = "popup:dismiss"

	// Popup events (server -> client)
	EventTypePopupDisplaying  EventType = "popup:displaying"
	EventTypePopupTick        EventType = "popup:tick"
	EventTypePopupRotate      EventType = "popup:rotate"
	EventTypePopupClosing     EventType = "popup:closing"
	EventTypePopupClosed      EventType = "popup:closed"
	EventTypePopupEmpty       EventType = "popup:empty"
	EventTypePopupFeedUpdated EventType = "popup:feed_updated"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PopupFrameData carries one rendered frame of a popup session.
type PopupFrameData struct {
	SessionID string          `json:"sessionId"`
	State     string          `json:"state"`
	Fallback  bool            `json:"fallback"`
	View      popup.PopupView `json:"view"`
}

// PopupClosedData is sent once per session when it leaves the screen.
type PopupClosedData struct {
	SessionID string `json:"sessionId,omitempty"`
	Reason    string `json:"reason"`
}

// FrameFromSnapshot renders a session snapshot for the wire.
func FrameFromSnapshot(s popup.Snapshot) PopupFrameData {
	view, _ := s.View()
	return PopupFrameData{
		SessionID: s.SessionID,
		State:     s.StateName,
		Fallback:  s.Fallback,
		View:      view,
	}
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
