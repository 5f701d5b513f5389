// Package metrics exposes Prometheus collectors for the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Sync records push and pull outcomes. A nil *Sync, or one built with a nil
// registerer, drops every observation.
type Sync struct {
	push     *prometheus.CounterVec
	pulled   *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewSync(reg prometheus.Registerer) *Sync {
	if reg == nil {
		return &Sync{}
	}
	push := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studydeck_sync_push_total",
		Help: "Records pushed to the backend, by entity and result.",
	}, []string{"entity", "result"})
	pulled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studydeck_sync_pulled_total",
		Help: "Records pulled from the backend, by entity.",
	}, []string{"entity"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "studydeck_sync_cycle_seconds",
		Help:    "Duration of sync cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(push, pulled, duration)
	return &Sync{push: push, pulled: pulled, duration: duration}
}

func (s *Sync) Pushed(entity string, ok bool) {
	if s == nil || s.push == nil {
		return
	}
	result := ResultOK
	if !ok {
		result = ResultFailed
	}
	s.push.WithLabelValues(normalizeLabel(entity), result).Inc()
}

func (s *Sync) Pulled(entity string, n int) {
	if s == nil || s.pulled == nil || n <= 0 {
		return
	}
	s.pulled.WithLabelValues(normalizeLabel(entity)).Add(float64(n))
}

func (s *Sync) ObserveCycle(d time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
