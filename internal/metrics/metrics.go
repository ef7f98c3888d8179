package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the frame loop metrics. It satisfies animator.Observer.
type Registry struct {
	FramesTotal   prometheus.Counter
	FrameDuration prometheus.Histogram
	EdgesDrawn    prometheus.Histogram
	Nodes         prometheus.Gauge
	HaltsTotal    *prometheus.CounterVec
	ResizesTotal  prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a Registry on its own prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.FramesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "nodefield_frames_total",
		Help: "Total number of frames simulated and rendered",
	})
	r.FrameDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodefield_frame_duration_seconds",
		Help:    "Time spent in one update-and-render pass",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
	})
	r.EdgesDrawn = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodefield_edges_drawn",
		Help:    "Number of connections drawn per frame",
		Buckets: []float64{0, 5, 10, 20, 40, 80, 160},
	})
	r.Nodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "nodefield_nodes",
		Help: "Number of nodes in the field",
	})
	r.HaltsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "nodefield_loop_halts_total",
		Help: "Frame loop stops by reason",
	}, []string{"reason"})
	r.ResizesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "nodefield_resizes_total",
		Help: "Viewport resizes applied to the field",
	})
	return r
}

// ObserveFrame records one completed frame.
func (r *Registry) ObserveFrame(d time.Duration, nodes, edges int) {
	r.FramesTotal.Inc()
	r.FrameDuration.Observe(d.Seconds())
	r.EdgesDrawn.Observe(float64(edges))
	r.Nodes.Set(float64(nodes))
}

// ObserveHalt records why the loop stopped.
func (r *Registry) ObserveHalt(reason string) {
	r.HaltsTotal.WithLabelValues(reason).Inc()
}

// ObserveResize records an applied viewport change.
func (r *Registry) ObserveResize() {
	r.ResizesTotal.Inc()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
