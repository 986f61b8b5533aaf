package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cory-johannsen/risus/internal/game/probability"
)

// Metrics holds the Prometheus collectors of the calculator on a private
// registry, so independent instances never collide.
type Metrics struct {
	registry            *prometheus.Registry
	Enumerations        *prometheus.CounterVec
	NodesVisited        *prometheus.CounterVec
	EnumerationDuration *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
}

// NewMetrics creates and registers all calculator metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Enumerations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "risus_enumerations_total",
			Help: "Total number of outcome tree enumerations",
		}, []string{"ruleset", "query"}),
		NodesVisited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "risus_enumeration_nodes_visited_total",
			Help: "Total number of outcome tree nodes visited",
		}, []string{"ruleset"}),
		EnumerationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "risus_enumeration_duration_seconds",
			Help:    "Duration of a single enumeration",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"ruleset", "query"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "risus_cell_cache_lookups_total",
			Help: "Probability cell cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveEnumeration records one enumeration; it satisfies probability.Observer.
func (m *Metrics) ObserveEnumeration(rulesetID string, q probability.Query, stats probability.Stats, elapsed time.Duration) {
	m.Enumerations.WithLabelValues(rulesetID, string(q)).Inc()
	m.NodesVisited.WithLabelValues(rulesetID).Add(float64(stats.Visited))
	m.EnumerationDuration.WithLabelValues(rulesetID, string(q)).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a cell cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
