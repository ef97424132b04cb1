package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := NewPopupMetrics("test")

	m.Activation("displayed")
	m.Activation("displayed")
	m.SessionDisplayed()
	m.SessionEnded("timeout")
	m.FeedFallback()
	m.Save("created")

	require.Equal(t, 2.0, testutil.ToFloat64(m.activations.WithLabelValues("displayed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.closes.WithLabelValues("timeout")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.liveSessions))
	require.Equal(t, 1.0, testutil.ToFloat64(m.feedFallbacks))
	require.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("created")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *PopupMetrics
	require.NotPanics(t, func() {
		m.Activation("displayed")
		m.SessionDisplayed()
		m.SessionEnded("manual")
		m.FeedFallback()
		m.Save("failed")
	})
}
