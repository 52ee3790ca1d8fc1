package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics records metadata for scheduled data-source fetches.
type FetchMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	stale    *prometheus.CounterVec
}

// NewFetchMetrics registers the fetch metrics on the provided registerer.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	if reg == nil {
		return &FetchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fetch_duration_seconds",
		Help:    "Duration of scheduled fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_success",
		Help: "Successful scheduled fetches.",
	}, []string{"source"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_failure",
		Help: "Failed scheduled fetches.",
	}, []string{"source"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_stale_discarded",
		Help: "Fetch results discarded because a newer fetch completed first.",
	}, []string{"source"})
	reg.MustRegister(duration, success, failure, stale)
	return &FetchMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		stale:    stale,
	}
}

// ObserveDuration records the duration for the named source.
func (f *FetchMetrics) ObserveDuration(source string, duration time.Duration) {
	if f == nil || f.duration == nil {
		return
	}
	f.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named source.
func (f *FetchMetrics) IncSuccess(source string) {
	if f == nil || f.success == nil {
		return
	}
	f.success.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFailure increments the failure counter for the named source.
func (f *FetchMetrics) IncFailure(source string) {
	if f == nil || f.failure == nil {
		return
	}
	f.failure.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncStale increments the discarded-result counter for the named source.
func (f *FetchMetrics) IncStale(source string) {
	if f == nil || f.stale == nil {
		return
	}
	f.stale.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
