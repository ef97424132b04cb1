// internal/metrics/popup.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PopupMetrics groups the popup service's Prometheus collectors on a
// private registry. A nil *PopupMetrics is valid and records nothing.
type PopupMetrics struct {
	registry      *prometheus.Registry
	activations   *prometheus.CounterVec
	closes        *prometheus.CounterVec
	feedFallbacks prometheus.Counter
	saves         *prometheus.CounterVec
	liveSessions  prometheus.Gauge
}

func NewPopupMetrics(namespace string) *PopupMetrics {
	if namespace == "" {
		namespace = "popup"
	}

	registry := prometheus.NewRegistry()
	m := &PopupMetrics{
		registry: registry,
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Popup activations by outcome.",
		}, []string{"outcome"}),
		closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closes_total",
			Help:      "Displayed popup sessions that ended, by reason.",
		}, []string{"reason"}),
		feedFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fallbacks_total",
			Help:      "Offer feed loads that fell back to the default welcome offer.",
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_saves_total",
			Help:      "Main offer saves by result.",
		}, []string{"result"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Popup sessions currently displaying or closing.",
		}),
	}

	registry.MustRegister(m.activations, m.closes, m.feedFallbacks, m.saves, m.liveSessions)
	registry.MustRegister(collectors.NewGoCollector())
	return m
}

func (m *PopupMetrics) Activation(outcome string) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(outcome).Inc()
}

func (m *PopupMetrics) SessionDisplayed() {
	if m == nil {
		return
	}
	m.liveSessions.Inc()
}

func (m *PopupMetrics) SessionEnded(reason string) {
	if m == nil {
		return
	}
	m.liveSessions.Dec()
	m.closes.WithLabelValues(reason).Inc()
}

func (m *PopupMetrics) FeedFallback() {
	if m == nil {
		return
	}
	m.feedFallbacks.Inc()
}

func (m *PopupMetrics) Save(result string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *PopupMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PopupMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
