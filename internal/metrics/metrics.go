// Package metrics holds the Prometheus collectors the service exports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recalculation kinds.
const (
	KindMaterial = "material"
	KindRecipe   = "recipe"
	KindProduct  = "product"
)

// Domain rejection reasons.
const (
	RejectMargin = "degenerate_margin"
	RejectLayout = "degenerate_layout"
)

// Metrics is the set of collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	Recalculations      *prometheus.CounterVec
	UnresolvedUsages    prometheus.Counter
	LabelsRendered      prometheus.Counter
	LabelPagesRendered  prometheus.Counter
	LabelRenderDuration prometheus.Histogram
	DomainErrors        *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Recalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakecost",
			Name:      "recalculations_total",
			Help:      "Derived cost recalculations by entity kind.",
		}, []string{"kind"}),
		UnresolvedUsages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bakecost",
			Name:      "unresolved_usages_total",
			Help:      "Recipe usages skipped because their material did not resolve.",
		}),
		LabelsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bakecost",
			Name:      "labels_rendered_total",
			Help:      "Labels placed on printed sheets.",
		}),
		LabelPagesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bakecost",
			Name:      "label_pages_rendered_total",
			Help:      "Label sheets rendered.",
		}),
		LabelRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bakecost",
			Name:      "label_render_duration_seconds",
			Help:      "Time spent laying out and rendering a print job.",
			Buckets:   prometheus.DefBuckets,
		}),
		DomainErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakecost",
			Name:      "domain_errors_total",
			Help:      "Requests rejected by a domain rule.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.Recalculations,
		m.UnresolvedUsages,
		m.LabelsRendered,
		m.LabelPagesRendered,
		m.LabelRenderDuration,
		m.DomainErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Recalculated counts one recalculation of kind.
func (m *Metrics) Recalculated(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Recalculations.WithLabelValues(kind).Add(float64(n))
}

// Unresolved counts skipped recipe usages.
func (m *Metrics) Unresolved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.UnresolvedUsages.Add(float64(n))
}

// Rejected counts a request refused by a domain rule.
func (m *Metrics) Rejected(kind string) {
	if m == nil {
		return
	}
	m.DomainErrors.WithLabelValues(kind).Inc()
}

// Rendered records one finished print job.
func (m *Metrics) Rendered(labels, pages int, took time.Duration) {
	if m == nil {
		return
	}
	m.LabelsRendered.Add(float64(labels))
	m.LabelPagesRendered.Add(float64(pages))
	m.LabelRenderDuration.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }
