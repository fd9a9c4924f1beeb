package tracehist

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done over a run. A nil *Metrics records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	frames        prometheus.Counter
	traces        *prometheus.CounterVec
	grids         *prometheus.CounterVec
	emptyTags     prometheus.Counter
	emptyPlanes   *prometheus.CounterVec
	resolutionErr prometheus.Counter
}

// NewMetrics registers the run counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehist_frames_processed_total",
			Help: "Number of frames processed",
		}),
		traces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracehist_traces_binned_total",
			Help: "Number of traces accumulated into grids",
		}, []string{"plane"}),
		grids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracehist_grids_written_total",
			Help: "Number of grids handed to the output sinks",
		}, []string{"plane"}),
		emptyTags: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehist_empty_tags_total",
			Help: "Number of tags skipped because no trace carried them",
		}),
		emptyPlanes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracehist_empty_planes_total",
			Help: "Number of planes skipped because they had no traces",
		}, []string{"plane"}),
		resolutionErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehist_resolution_errors_total",
			Help: "Number of frames aborted by channel resolution errors",
		}),
	}
	m.registry.MustRegister(m.frames, m.traces, m.grids, m.emptyTags, m.emptyPlanes, m.resolutionErr)
	return m
}

// Registry exposes the registry holding the run counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the counters in the node exporter textfile format.
func (m *Metrics) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}

func planeLabel(plane int) string {
	return string(PlaneLetter(plane))
}

func (m *Metrics) frameProcessed() {
	if m != nil {
		m.frames.Inc()
	}
}

func (m *Metrics) gridWritten(plane int, ntraces int) {
	if m != nil {
		m.grids.WithLabelValues(planeLabel(plane)).Inc()
		m.traces.WithLabelValues(planeLabel(plane)).Add(float64(ntraces))
	}
}

func (m *Metrics) emptyTag() {
	if m != nil {
		m.emptyTags.Inc()
	}
}

func (m *Metrics) emptyPlane(plane int) {
	if m != nil {
		m.emptyPlanes.WithLabelValues(planeLabel(plane)).Inc()
	}
}

func (m *Metrics) resolutionError() {
	if m != nil {
		m.resolutionErr.Inc()
	}
}
