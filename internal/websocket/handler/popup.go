// internal/websocket/handler/popup.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bakery-popup/internal/domain/popup"
	wstypes "bakery-popup/internal/domain/websocket"
	"bakery-popup/internal/metrics"
	"bakery-popup/internal/pkg/clock"
	xerrors "bakery-popup/internal/pkg/errors"
	"bakery-popup/internal/pkg/ratelimit"
	popupsvc "bakery-popup/internal/service/popup"
	ws "bakery-popup/internal/websocket"

	"go.uber.org/zap"
)

// PopupHandler runs one popup session per websocket client. The client plays
// the host page: popup:open raises the open flag, popup:dismiss lowers it,
// popup:close is the user pressing the close button.
type PopupHandler struct {
	loader  popupsvc.Loader
	limiter *ratelimit.Limiter
	clock   clock.Clock
	logger  *zap.Logger
	metrics *metrics.PopupMetrics

	mu       sync.Mutex
	sessions map[*ws.Client]*popupsvc.Session
}

func NewPopupHandler(loader popupsvc.Loader, limiter *ratelimit.Limiter, clk clock.Clock, logger *zap.Logger, m *metrics.PopupMetrics) *PopupHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	return &PopupHandler{
		loader:   loader,
		limiter:  limiter,
		clock:    clk,
		logger:   logger,
		metrics:  m,
		sessions: make(map[*ws.Client]*popupsvc.Session),
	}
}

// SupportedEvents returns events this handler supports
func (h *PopupHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypePopupOpen,
		wstypes.EventTypePopupClose,
		wstypes.EventTypePopupDismiss,
	}
}

// HandleMessage processes popup messages
func (h *PopupHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypePopupOpen:
		return h.handleOpen(ctx, client)

	case wstypes.EventTypePopupClose:
		if s := h.lookup(client); s != nil {
			s.Close()
		}
		return nil

	case wstypes.EventTypePopupDismiss:
		return h.handleDismiss(ctx, client)

	default:
		return fmt.Errorf("%w: %s", ws.ErrUnsupportedEvent, msg.Type)
	}
}

// HandleDisconnect tears down the client's session.
func (h *PopupHandler) HandleDisconnect(client *ws.Client) {
	h.mu.Lock()
	s, ok := h.sessions[client]
	delete(h.sessions, client)
	h.mu.Unlock()

	if ok {
		s.Teardown()
	}
}

// Sessions is the number of clients with a session.
func (h *PopupHandler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *PopupHandler) handleOpen(ctx context.Context, client *ws.Client) error {
	allowed, _, err := h.limiter.Allow(ctx, client.VisitorID())
	if err != nil {
		// Rate limiting is best effort; a Redis outage must not hide the popup.
		h.logger.Warn("activation rate limit unavailable", zap.Error(err))
	} else if !allowed {
		client.SendError("rate_limited", xerrors.ErrRateLimited.Error(), "")
		return nil
	}

	s, err := h.sessionFor(client)
	if err != nil {
		return err
	}

	// Loading must not block the read loop, or a close sent while the feed
	// is loading would never be seen.
	go func() {
		err := s.Open(client.Context())
		switch {
		case err == nil:
		case errors.Is(err, xerrors.ErrSessionBusy):
			client.SendError("popup_busy", err.Error(), "")
		case errors.Is(err, xerrors.ErrActivationAborted):
		default:
			h.logger.Error("popup activation failed", zap.Error(err))
			client.SendError("popup_failed", "Failed to open popup", err.Error())
		}
	}()
	return nil
}

func (h *PopupHandler) handleDismiss(ctx context.Context, client *ws.Client) error {
	s := h.lookup(client)
	if s == nil {
		return nil
	}

	snap := s.Snapshot()
	if snap.State == popup.StateIdle {
		return nil
	}
	if err := s.SetOpen(ctx, false); err != nil {
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypePopupClosed, wstypes.PopupClosedData{
		SessionID: snap.SessionID,
		Reason:    string(popup.CloseReasonExternal),
	}))
	return nil
}

func (h *PopupHandler) lookup(client *ws.Client) *popupsvc.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[client]
}

// sessionFor checks the client context under the lock. The hub cancels it
// before HandleDisconnect runs, so a closed client never gets a new session.
func (h *PopupHandler) sessionFor(client *ws.Client) (*popupsvc.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.Context().Err() != nil {
		return nil, ws.ErrClientClosed
	}

	if s, ok := h.sessions[client]; ok {
		return s, nil
	}

	s := popupsvc.NewSession(h.loader,
		func(sessionID string, reason popup.CloseReason) {
			client.SendMessage(wstypes.NewMessage(wstypes.EventTypePopupClosed, wstypes.PopupClosedData{
				SessionID: sessionID,
				Reason:    string(reason),
			}))
		},
		h.logger.With(zap.String("visitor_id", client.VisitorID())),
		popupsvc.WithClock(h.clock),
		popupsvc.WithObserver(&clientObserver{client: client}),
		popupsvc.WithMetrics(h.metrics),
	)
	h.sessions[client] = s
	return s, nil
}

// clientObserver forwards session frames to the websocket client.
type clientObserver struct {
	client *ws.Client
}

func (o *clientObserver) OnDisplay(s popup.Snapshot) {
	o.send(wstypes.EventTypePopupDisplaying, s)
}

func (o *clientObserver) OnTick(s popup.Snapshot) {
	o.send(wstypes.EventTypePopupTick, s)
}

func (o *clientObserver) OnRotate(s popup.Snapshot) {
	o.send(wstypes.EventTypePopupRotate, s)
}

func (o *clientObserver) OnClosing(s popup.Snapshot) {
	o.send(wstypes.EventTypePopupClosing, s)
}

func (o *clientObserver) OnEmpty(sessionID string) {
	o.client.SendMessage(wstypes.NewMessage(wstypes.EventTypePopupEmpty, map[string]interface{}{
		"sessionId": sessionID,
	}))
}

func (o *clientObserver) send(t wstypes.EventType, s popup.Snapshot) {
	o.client.SendMessage(wstypes.NewMessage(t, wstypes.FrameFromSnapshot(s)))
}
