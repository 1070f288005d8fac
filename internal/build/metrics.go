package build

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BuildMetrics tracks build outcomes in a dedicated Prometheus registry.
type BuildMetrics struct {
	registry    *prometheus.Registry
	builds      *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewBuildMetrics creates a new build metrics tracker
func NewBuildMetrics() *BuildMetrics {
	m := &BuildMetrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coda",
			Name:      "builds_total",
			Help:      "Unity builds by outcome and failing phase.",
		}, []string{"result", "phase"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coda",
			Name:      "build_duration_seconds",
			Help:      "Wall time of aggregation plus compilation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coda",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
	}
	m.registry.MustRegister(m.builds, m.duration, m.lastSuccess)
	return m
}

// RecordBuild records a build result in the metrics
func (m *BuildMetrics) RecordBuild(result *BuildResult) {
	m.duration.Observe(result.Duration.Seconds())

	if result.Succeeded() {
		m.builds.WithLabelValues("success", "").Inc()
		m.lastSuccess.Set(float64(result.FinishedAt.Unix()))
		return
	}
	m.builds.WithLabelValues("failure", string(result.Phase)).Inc()
}

// Registry exposes the underlying registry.
func (m *BuildMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *BuildMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
