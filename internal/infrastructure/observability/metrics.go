package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// CacheMetrics exposes query cache and invalidation counters to Prometheus
type CacheMetrics struct {
	invalidations      *prometheus.CounterVec
	invalidatedEntries *prometheus.CounterVec
	invalidationErrors *prometheus.CounterVec
	lookups            *prometheus.CounterVec
	evictions          prometheus.Counter
	mutations          *prometheus.CounterVec
	mutationDuration   *prometheus.HistogramVec
}

// NewCacheMetrics creates the collectors and registers them with reg
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lims_gateway",
			Name:      "invalidations_total",
			Help:      "Invalidation passes by entity and source.",
		}, []string{"entity", "source"}),
		invalidatedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lims_gateway",
			Name:      "invalidated_entries_total",
			Help:      "Cached entries marked stale by invalidation.",
		}, []string{"entity", "source"}),
		invalidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lims_gateway",
			Name:      "invalidation_errors_total",
			Help:      "Invalidation failures by stage.",
		}, []string{"stage"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lims_gateway",
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by entity and result.",
		}, []string{"entity", "result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lims_gateway",
			Name:      "query_cache_evictions_total",
			Help:      "Idle entries removed by the cache janitor.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lims_gateway",
			Name:      "mutations_total",
			Help:      "Mutations by entity, action and outcome.",
		}, []string{"entity", "action", "outcome"}),
		mutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lims_gateway",
			Name:      "mutation_duration_seconds",
			Help:      "Upstream duration of mutations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "action"}),
	}

	reg.MustRegister(
		m.invalidations,
		m.invalidatedEntries,
		m.invalidationErrors,
		m.lookups,
		m.evictions,
		m.mutations,
		m.mutationDuration,
	)
	return m
}

// RecordInvalidation counts one invalidation pass
func (m *CacheMetrics) RecordInvalidation(entity entities.Entity, source string, roots, matched int) {
	m.invalidations.WithLabelValues(string(entity), source).Inc()
	m.invalidatedEntries.WithLabelValues(string(entity), source).Add(float64(matched))
}

// RecordInvalidationError counts a failed invalidation stage
func (m *CacheMetrics) RecordInvalidationError(stage string) {
	m.invalidationErrors.WithLabelValues(stage).Inc()
}

// RecordMutation counts a mutation and observes its duration
func (m *CacheMetrics) RecordMutation(entity entities.Entity, action entities.MutationAction, outcome entities.MutationOutcome, duration time.Duration) {
	m.mutations.WithLabelValues(string(entity), string(action), string(outcome)).Inc()
	m.mutationDuration.WithLabelValues(string(entity), string(action)).Observe(duration.Seconds())
}

// CacheHit counts a fresh cache read
func (m *CacheMetrics) CacheHit(key keys.Key) {
	m.lookups.WithLabelValues(string(key.Entity()), "hit").Inc()
}

// CacheMiss counts a read that had to load
func (m *CacheMetrics) CacheMiss(key keys.Key) {
	m.lookups.WithLabelValues(string(key.Entity()), "miss").Inc()
}

// CacheEvicted counts entries removed by Sweep
func (m *CacheMetrics) CacheEvicted(n int) {
	m.evictions.Add(float64(n))
}
