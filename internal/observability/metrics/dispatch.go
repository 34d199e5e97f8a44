// Package metrics provides Prometheus metrics for notification dispatch.
package metrics

import (
	"fmt"
	"time"

	"github.com/lostfound-notify/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics counts dispatch operations and per-subscription push outcomes.
type DispatchMetrics struct {
	DispatchesTotal      *prometheus.CounterVec // by mode
	RecordFailuresTotal  prometheus.Counter     // notification writes that failed
	SelectedTotal        *prometheus.CounterVec // subscriptions selected, by mode
	SelectionErrorsTotal *prometheus.CounterVec // selector store failures, by mode
	PushOutcomesTotal    *prometheus.CounterVec // by outcome
	PushSendDuration     prometheus.Histogram   // latency of one push attempt
	PushSkippedTotal     prometheus.Counter     // dispatches with push disabled
	ActiveDispatches     prometheus.Gauge       // dispatches currently fanning out
	collectors           []prometheus.Collector
}

// NewDispatchMetrics creates and registers the dispatch metrics on registry.
func NewDispatchMetrics(registry prometheus.Registerer) (*DispatchMetrics, error) {
	m := &DispatchMetrics{
		DispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_dispatches_total",
			Help: "Total notification dispatch operations by mode",
		}, []string{"mode"}),
		RecordFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_record_failures_total",
			Help: "Total dispatches aborted because the in-app notification could not be written",
		}),
		SelectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_subscriptions_selected_total",
			Help: "Total push subscriptions selected for delivery by mode",
		}, []string{"mode"}),
		SelectionErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_selection_errors_total",
			Help: "Total subscription store failures during selection by mode",
		}, []string{"mode"}),
		PushOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_push_outcomes_total",
			Help: "Total push delivery attempts by terminal outcome",
		}, []string{"outcome"}),
		PushSendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notify_push_send_duration_seconds",
			Help:    "Time taken for one Web Push delivery attempt",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		PushSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_push_skipped_total",
			Help: "Total dispatches that skipped push because VAPID keys are not configured",
		}),
		ActiveDispatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notify_active_dispatches",
			Help: "Dispatch operations currently delivering push messages",
		}),
	}
	m.collectors = []prometheus.Collector{
		m.DispatchesTotal, m.RecordFailuresTotal, m.SelectedTotal, m.SelectionErrorsTotal,
		m.PushOutcomesTotal, m.PushSendDuration, m.PushSkippedTotal, m.ActiveDispatches,
	}
	for _, c := range m.collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register dispatch metrics: %w", err)
		}
	}
	return m, nil
}

func (m *DispatchMetrics) DispatchStarted(mode string) {
	m.DispatchesTotal.WithLabelValues(mode).Inc()
}

func (m *DispatchMetrics) RecordFailed() {
	m.RecordFailuresTotal.Inc()
}

func (m *DispatchMetrics) PushSkipped() {
	m.PushSkippedTotal.Inc()
}

func (m *DispatchMetrics) Selected(mode string, n int) {
	m.SelectedTotal.WithLabelValues(mode).Add(float64(n))
}

func (m *DispatchMetrics) SelectionFailed(mode string) {
	m.SelectionErrorsTotal.WithLabelValues(mode).Inc()
}

func (m *DispatchMetrics) FanOutStarted() { m.ActiveDispatches.Inc() }

func (m *DispatchMetrics) FanOutFinished() { m.ActiveDispatches.Dec() }

func (m *DispatchMetrics) PushAttempted(outcome domain.PushOutcome, took time.Duration) {
	m.PushOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	m.PushSendDuration.Observe(took.Seconds())
}
