// Package metrics exposes the Prometheus instrumentation for the fetch,
// cache, generation and session pipelines.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all gymrun metrics.
type Registry struct {
	FetchAttempts  *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	StoreLoads     *prometheus.CounterVec
	PoolSize       *prometheus.GaugeVec
	GenShortfalls  prometheus.Counter
	SessionsActive prometheus.Gauge
	SolvesVerified *prometheus.CounterVec
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// NewRegistry creates the metric set and registers it with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymrun_fetch_attempts_total",
				Help: "Upstream fetch attempts by platform, endpoint host and outcome",
			},
			[]string{"platform", "host", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gymrun_fetch_duration_seconds",
				Help:    "Duration of upstream fetch attempts",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"platform", "outcome"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymrun_cache_hits_total",
			Help: "Snapshot cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymrun_cache_misses_total",
			Help: "Snapshot cache misses",
		}),
		StoreLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymrun_store_loads_total",
				Help: "Aggregate store load calls by result",
			},
			[]string{"result"},
		),
		PoolSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gymrun_pool_size",
				Help: "Problems currently loaded per platform",
			},
			[]string{"platform"},
		),
		GenShortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymrun_generation_shortfalls_total",
			Help: "Set-generation slots that found no candidate",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gymrun_sessions_active",
			Help: "Training sessions currently running",
		}),
		SolvesVerified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymrun_solves_verified_total",
				Help: "Solve verification outcomes",
			},
			[]string{"platform", "outcome"},
		),
	}

	reg.MustRegister(
		r.FetchAttempts, r.FetchDuration,
		r.CacheHits, r.CacheMisses,
		r.StoreLoads, r.PoolSize,
		r.GenShortfalls, r.SessionsActive, r.SolvesVerified,
	)
	return r
}

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRegistry
}

// ObserveFetch records one upstream attempt.
func (r *Registry) ObserveFetch(platform, host, outcome string, elapsed time.Duration) {
	r.FetchAttempts.WithLabelValues(platform, host, outcome).Inc()
	r.FetchDuration.WithLabelValues(platform, outcome).Observe(elapsed.Seconds())
}

// Handler serves the default Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
