// Package metrics exposes Prometheus instrumentation for loading,
// classification and the dashboard server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zalepa/commutemap/classify"
)

const namespace = "commutemap"

// Metrics holds the Prometheus counters, histograms, and gauges.
type Metrics struct {
	RowsLoaded    prometheus.Counter
	LoadErrors    prometheus.Counter
	LoadDuration  prometheus.Histogram
	CitywideTotal prometheus.Gauge
	Classified    *prometheus.CounterVec   // labels: mode, class
	HTTPRequests  *prometheus.CounterVec   // labels: route, code
	HTTPDuration  *prometheus.HistogramVec // labels: route
	LocateLookups *prometheus.CounterVec   // labels: outcome={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Census rows normalized into the community index.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Dataset loads that failed.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of fetching and joining both datasets.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CitywideTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "citywide_total",
			Help:      "Citywide total of the designated category.",
		}),
		Classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "communities_classified_total",
			Help:      "Communities classified, by mode and resulting class.",
		}, []string{"mode", "class"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Dashboard requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Dashboard request duration by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		LocateLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_lookups_total",
			Help:      "Point-in-community lookups by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsLoaded,
		m.LoadErrors,
		m.LoadDuration,
		m.CitywideTotal,
		m.Classified,
		m.HTTPRequests,
		m.HTTPDuration,
		m.LocateLookups,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewForTesting creates Metrics registered with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

// ObserveResult counts each classified community under its class label.
func (m *Metrics) ObserveResult(res *classify.Result) {
	for _, c := range res.Communities {
		m.Classified.WithLabelValues(string(res.Mode), ClassLabel(c)).Inc()
	}
}

// ClassLabel names the class a community landed in for metrics.
func ClassLabel(c classify.Classification) string {
	switch c.Mode {
	case classify.ModeDominant:
		if c.Dominant == classify.None {
			return "none"
		}
		return string(c.Dominant)
	case classify.ModePercentage:
		return c.Bucket.String()
	}
	if c.HasData {
		return "data"
	}
	return "no-data"
}
