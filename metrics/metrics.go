// Package metrics exports Prometheus collectors for validation, the poll
// cache and calls to the Poll API.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "poll_creator"

// Metrics is safe to use through a nil pointer, in which case every
// Record method is a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	validations      *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	cacheEvictions   prometheus.Counter
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	submissions      *prometheus.CounterVec
}

// New registers the collectors with reg. A nil registry means a fresh one,
// so separate instances never collide.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Survey validations by outcome.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Poll cache lookups by result.",
		}, []string{"result"}),
		cacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries evicted from the poll cache to make room.",
		}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of Poll API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Failed Poll API calls.",
		}, []string{"operation"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Poll submissions by status.",
		}, []string{"status"}),
	}

	collectors := []prometheus.Collector{
		m.validations,
		m.cacheLookups,
		m.cacheEvictions,
		m.upstreamDuration,
		m.upstreamErrors,
		m.submissions,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordValidation(valid bool) {
	if m == nil {
		return
	}
	if valid {
		m.validations.WithLabelValues("valid").Inc()
	} else {
		m.validations.WithLabelValues("invalid").Inc()
	}
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) RecordCacheEviction() {
	if m == nil {
		return
	}
	m.cacheEvictions.Inc()
}

// RecordUpstream tracks the duration and failure of one Poll API call.
func (m *Metrics) RecordUpstream(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.upstreamErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RecordSubmission(status string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(status).Inc()
}
