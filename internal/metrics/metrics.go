package metrics

import (
	"net/http"

	"github.com/gigscope/gigscope/pkg/browse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gigscope collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	cycles   *prometheus.CounterVec
	dropped  prometheus.Counter
	items    prometheus.Gauge
	handoffs *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.cycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigscope",
		Name:      "fetch_cycles_total",
		Help:      "Fetch cycles by outcome (applied, stale, failed)",
	}, []string{"outcome"})
	m.dropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gigscope",
		Name:      "dropped_records_total",
		Help:      "Raw records dropped for lacking an identifier",
	})
	m.items = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gigscope",
		Name:      "catalog_items",
		Help:      "Items in the currently applied catalog",
	})
	m.handoffs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigscope",
		Name:      "cart_handoffs_total",
		Help:      "Add-to-cart requests by outcome",
	}, []string{"outcome"})

	m.Registry.MustRegister(m.cycles, m.dropped, m.items, m.handoffs)
	return m
}

// CycleFinished implements browse.Observer.
func (m *Metrics) CycleFinished(o browse.Outcome) {
	switch {
	case !o.Applied:
		m.cycles.WithLabelValues("stale").Inc()
	case o.Err != nil:
		m.cycles.WithLabelValues("failed").Inc()
		m.items.Set(0)
	default:
		m.cycles.WithLabelValues("applied").Inc()
		m.dropped.Add(float64(o.Dropped))
		m.items.Set(float64(o.Items))
	}
}

// Handoff counts one add-to-cart attempt, e.g. "ok", "rejected", "auth", "error".
func (m *Metrics) Handoff(outcome string) {
	m.handoffs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
