package websocket

import (
	"testing"

	"bakery-popup/internal/domain/popup"

	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"popup:open"}`))
	require.NoError(t, err)
	require.Equal(t, EventTypePopupOpen, msg.Type)

	_, err = ParseMessage([]byte(`{not json`))
	require.Error(t, err)
}

func TestFrameFromSnapshot(t *testing.T) {
	snap := popup.Snapshot{
		SessionID: "s1",
		State:     popup.StateDisplaying,
		StateName: popup.StateDisplaying.String(),
		Offers:    []popup.Offer{popup.DefaultOffer()},
		TimeLeft:  4,
		Duration:  8,
		Fallback:  true,
	}

	frame := FrameFromSnapshot(snap)
	require.Equal(t, "s1", frame.SessionID)
	require.Equal(t, "displaying", frame.State)
	require.True(t, frame.Fallback)
	require.Equal(t, popup.DefaultOffer().Title, frame.View.Title)
	require.Equal(t, 50.0, frame.View.Progress)
}

func TestNewMessageHasID(t *testing.T) {
	a := NewMessage(EventTypePong, nil)
	b := NewMessage(EventTypePong, nil)
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
}
