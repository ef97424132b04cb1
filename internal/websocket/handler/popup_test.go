package handlers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"bakery-popup/internal/domain/popup"
	wstypes "bakery-popup/internal/domain/websocket"
	"bakery-popup/internal/pkg/clock"
	ws "bakery-popup/internal/websocket"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// slowLoader parks until released and ignores cancellation, like a store
// call that has already been sent.
type slowLoader struct {
	started  chan struct{}
	release  chan struct{}
	calls    atomic.Int32
	returned atomic.Bool
}

func newSlowLoader() *slowLoader {
	return &slowLoader{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (l *slowLoader) Load(context.Context) popup.Feed {
	l.calls.Add(1)
	l.started <- struct{}{}
	<-l.release
	l.returned.Store(true)
	return popup.Feed{Duration: 8, Offers: []popup.Offer{
		{ID: "a", Title: "Sourdough Saturday", IsActive: true},
		{ID: "b", Title: "Rye Rally", IsActive: true},
	}}
}

func newHandler(loader *slowLoader) (*PopupHandler, *clock.Manual, *ws.Client) {
	clk := clock.NewManual(time.Unix(0, 0))
	h := NewPopupHandler(loader, nil, clk, zap.NewNop(), nil)
	client := ws.NewClient(ws.NewHub(zap.NewNop()), nil, "visitor-1")
	return h, clk, client
}

func open(t *testing.T, h *PopupHandler, client *ws.Client) error {
	t.Helper()
	return h.HandleMessage(context.Background(), client, &wstypes.WSMessage{Type: wstypes.EventTypePopupOpen})
}

func TestPopupHandler_DisconnectWhileLoadingLeavesNoTimers(t *testing.T) {
	loader := newSlowLoader()
	h, clk, client := newHandler(loader)

	require.NoError(t, open(t, h, client))
	<-loader.started
	require.Equal(t, 1, h.Sessions())

	client.Close()
	h.HandleDisconnect(client)
	require.Equal(t, 0, h.Sessions())

	close(loader.release)
	require.Eventually(t, loader.returned.Load, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return clk.Pending() > 0 }, 200*time.Millisecond, 10*time.Millisecond)

	clk.Advance(10 * time.Second)
	require.Equal(t, 0, clk.Pending())
}

func TestPopupHandler_OpenAfterDisconnectIsRefused(t *testing.T) {
	loader := newSlowLoader()
	h, clk, client := newHandler(loader)

	client.Close()
	h.HandleDisconnect(client)

	require.ErrorIs(t, open(t, h, client), ws.ErrClientClosed)
	require.Equal(t, 0, h.Sessions())
	require.Zero(t, loader.calls.Load())
	require.Equal(t, 0, clk.Pending())
}

func TestPopupHandler_OpenDisplaysAndCloseStopsTimers(t *testing.T) {
	loader := newSlowLoader()
	h, clk, client := newHandler(loader)
	close(loader.release)

	require.NoError(t, open(t, h, client))
	<-loader.started
	require.Eventually(t, func() bool { return clk.Pending() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.HandleMessage(context.Background(), client, &wstypes.WSMessage{Type: wstypes.EventTypePopupClose}))
	require.Equal(t, 0, clk.Pending())

	h.HandleDisconnect(client)
	require.Equal(t, 0, h.Sessions())
}
