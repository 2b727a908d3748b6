// Package metrics exposes Prometheus instrumentation for the
// orchestration pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// TurnMetrics exposes counters/histograms for orchestrated chat turns.
type TurnMetrics struct {
	turnsTotal       *prometheus.CounterVec
	turnLatency      *prometheus.HistogramVec
	llmFallbackTotal *prometheus.CounterVec
	streamTokens     prometheus.Counter
}

func NewTurnMetrics(reg prometheus.Registerer) *TurnMetrics {
	m := &TurnMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smsa",
			Subsystem: "orchestrator",
			Name:      "turns_total",
			Help:      "Total chat turns processed",
		}, []string{"intent", "agent", "mode"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smsa",
			Subsystem: "orchestrator",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one full turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		llmFallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smsa",
			Subsystem: "llm",
			Name:      "fallback_total",
			Help:      "Completions served by the fallback provider",
		}, []string{"reason"}),
		streamTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smsa",
			Subsystem: "orchestrator",
			Name:      "stream_tokens_total",
			Help:      "Token fragments emitted on streaming turns",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.llmFallbackTotal, m.streamTokens)
	return m
}

func (m *TurnMetrics) ObserveTurn(intent, agent, mode string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, agent, mode).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

func (m *TurnMetrics) ObserveLLMFallback(reason string) {
	if m == nil {
		return
	}
	m.llmFallbackTotal.WithLabelValues(reason).Inc()
}

func (m *TurnMetrics) ObserveStreamToken() {
	if m == nil {
		return
	}
	m.streamTokens.Inc()
}
