package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	TurnOutcomeAnswered          = "answered"
	TurnOutcomeNoQuery           = "no_query"
	TurnOutcomeTranslationFailed = "translation_failed"
	TurnOutcomeStoreUnavailable  = "store_unavailable"
	TurnOutcomeQueryError        = "query_error"
)

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzabot_turns_total",
			Help: "Total number of answered questions by outcome.",
		},
		[]string{"outcome"},
	)
	turnDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pizzabot_turn_duration_seconds",
			Help:    "End-to-end latency of a question from receipt to recorded answer.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)
	llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzabot_llm_requests_total",
			Help: "Total number of language model calls by purpose and status.",
		},
		[]string{"purpose", "status"},
	)
	llmLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pizzabot_llm_latency_seconds",
			Help:    "Language model call latency by purpose.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"purpose"},
	)
	catalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzabot_catalog_reloads_total",
			Help: "Total number of catalog reloads by status.",
		},
		[]string{"status"},
	)
	catalogItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pizzabot_catalog_items",
			Help: "Number of menu items loaded by the last successful reload.",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pizzabot_active_sessions",
			Help: "Current number of live web chat sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		turnsTotal,
		turnDurationSeconds,
		llmRequestsTotal,
		llmLatencySeconds,
		catalogReloadsTotal,
		catalogItems,
		activeSessions,
	)
}

func ObserveTurn(outcome string, elapsed time.Duration) {
	turnsTotal.WithLabelValues(outcome).Inc()
	turnDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveLLMCall(purpose string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmRequestsTotal.WithLabelValues(purpose, status).Inc()
	llmLatencySeconds.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func ObserveCatalogReload(items int, err error) {
	if err != nil {
		catalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	catalogReloadsTotal.WithLabelValues("ok").Inc()
	catalogItems.Set(float64(items))
}

func SetActiveSessions(count int) {
	if count < 0 {
		count = 0
	}
	activeSessions.Set(float64(count))
}
