// Package metrics exposes the service's Prometheus instrumentation. All
// observe methods are nil-safe so wiring stays optional in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal       *prometheus.CounterVec
	QueryDuration      prometheus.Histogram
	IterationsPerQuery prometheus.Histogram
	NewFactsPerRound   prometheus.Histogram
	StrategyFacts      *prometheus.CounterVec
	StrategyFailures   *prometheus.CounterVec
	LLMCalls           *prometheus.CounterVec
	LLMCallDuration    prometheus.Histogram
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pyrite",
				Subsystem: "queries",
				Name:      "total",
				Help:      "Total answered queries by selected origin and outcome",
			},
			[]string{"origin", "outcome"},
		),
		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pyrite",
				Subsystem: "queries",
				Name:      "duration_seconds",
				Help:      "End-to-end query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		IterationsPerQuery: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pyrite",
				Subsystem: "retrieval",
				Name:      "iterations_per_query",
				Help:      "Completed retrieval rounds per query",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
		),
		NewFactsPerRound: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pyrite",
				Subsystem: "retrieval",
				Name:      "new_facts_per_round",
				Help:      "New deduplicated facts added per round",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),
		StrategyFacts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pyrite",
				Subsystem: "retrieval",
				Name:      "strategy_facts_total",
				Help:      "Facts emitted per strategy before deduplication",
			},
			[]string{"strategy"},
		),
		StrategyFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pyrite",
				Subsystem: "retrieval",
				Name:      "strategy_failures_total",
				Help:      "Absorbed per-strategy failures",
			},
			[]string{"strategy"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pyrite",
				Subsystem: "llm",
				Name:      "calls_total",
				Help:      "Text-completion calls by status",
			},
			[]string{"status"},
		),
		LLMCallDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pyrite",
				Subsystem: "llm",
				Name:      "call_duration_seconds",
				Help:      "Text-completion call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pyrite",
				Subsystem: "llm_cache",
				Name:      "hits_total",
				Help:      "LLM response cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pyrite",
				Subsystem: "llm_cache",
				Name:      "misses_total",
				Help:      "LLM response cache misses",
			},
		),
	}

	m.registry.MustRegister(
		m.QueriesTotal,
		m.QueryDuration,
		m.IterationsPerQuery,
		m.NewFactsPerRound,
		m.StrategyFacts,
		m.StrategyFailures,
		m.LLMCalls,
		m.LLMCallDuration,
		m.CacheHits,
		m.CacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveQuery(origin, outcome string, elapsed time.Duration, iterations int) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(origin, outcome).Inc()
	m.QueryDuration.Observe(elapsed.Seconds())
	m.IterationsPerQuery.Observe(float64(iterations))
}

func (m *Metrics) ObserveRound(newFacts int) {
	if m == nil {
		return
	}
	m.NewFactsPerRound.Observe(float64(newFacts))
}

func (m *Metrics) ObserveStrategy(name string, facts int) {
	if m == nil {
		return
	}
	m.StrategyFacts.WithLabelValues(name).Add(float64(facts))
}

func (m *Metrics) StrategyFailure(name string) {
	if m == nil {
		return
	}
	m.StrategyFailures.WithLabelValues(name).Inc()
}

func (m *Metrics) ObserveLLMCall(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(status).Inc()
	m.LLMCallDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
