package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exports per-iteration optimizer statistics on its own
// registry via promauto.With, so multiple Optimizer instances in the
// same process (as in this package's tests) never collide by
// registering onto the global default registerer.
type Recorder struct {
	registry *prometheus.Registry

	iterations     prometheus.Counter
	chi2           prometheus.Gauge
	iterationTime  prometheus.Histogram
	activeEdges    prometheus.Gauge
	activeVertices prometheus.Gauge
}

// NewRecorder builds a Recorder and registers its collectors. namespace
// typically identifies the optimizer instance (e.g. a solver name),
// keeping metrics from multiple concurrent graphs distinguishable.
func NewRecorder(namespace string) *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_iterations_total",
			Help:      "Number of optimizer iterations executed.",
		}),
		chi2: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimizer_chi2",
			Help:      "Active chi-squared after the most recent iteration.",
		}),
		iterationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimizer_iteration_seconds",
			Help:      "Wall-clock duration of a single optimizer iteration.",
			Buckets:   prometheus.DefBuckets,
		}),
		activeEdges: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimizer_active_edges",
			Help:      "Number of edges in the active set.",
		}),
		activeVertices: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimizer_active_vertices",
			Help:      "Number of vertices in the active set.",
		}),
	}
}

// Registry exposes the underlying registry for an HTTP /metrics handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one completed iteration's statistics.
func (r *Recorder) Observe(chi2 float64, duration time.Duration, numEdges, numVertices int) {
	r.iterations.Inc()
	r.chi2.Set(chi2)
	r.iterationTime.Observe(duration.Seconds())
	r.activeEdges.Set(float64(numEdges))
	r.activeVertices.Set(float64(numVertices))
}
