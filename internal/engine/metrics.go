package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// Metrics holds optional Prometheus collectors for the router. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// PairsRouted counts connected pin pairs by the pass that produced them.
	PairsRouted *prometheus.CounterVec
	// PairsUnrouted counts pin pairs that could not be connected.
	PairsUnrouted prometheus.Counter
	// SearchExpansions tracks A* node expansions per search.
	SearchExpansions prometheus.Histogram
	// SearchCapped counts searches stopped by the iteration cap.
	SearchCapped prometheus.Counter
}

// NewMetrics creates the router collectors and registers them on reg.
// Passing a nil registerer creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PairsRouted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuitstudio_router_pairs_routed_total",
				Help: "Pin pairs connected, by routing pass",
			},
			[]string{"pass"},
		),
		PairsUnrouted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "circuitstudio_router_pairs_unrouted_total",
				Help: "Pin pairs left unrouted after all passes and the fallback",
			},
		),
		SearchExpansions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "circuitstudio_router_search_expansions",
				Help:    "A* node expansions per search",
				Buckets: prometheus.ExponentialBuckets(16, 4, 8),
			},
		),
		SearchCapped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "circuitstudio_router_search_capped_total",
				Help: "Searches stopped by the iteration cap",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.PairsRouted, m.PairsUnrouted, m.SearchExpansions, m.SearchCapped)
	}
	return m
}

func (m *Metrics) observeSearch(res searchResult) {
	if m == nil {
		return
	}
	m.SearchExpansions.Observe(float64(res.expansions))
	if res.capped {
		m.SearchCapped.Inc()
	}
}

func (m *Metrics) routed(pass model.RoutePass) {
	if m == nil {
		return
	}
	m.PairsRouted.WithLabelValues(pass.String()).Inc()
}

func (m *Metrics) unrouted() {
	if m == nil {
		return
	}
	m.PairsUnrouted.Inc()
}
