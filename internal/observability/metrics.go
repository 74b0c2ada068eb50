package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the process-level Prometheus registry. Package metrics
// such as the serializer's are bridged into it with MustRegister.
type Metrics struct {
	buildInfo *prometheus.GaugeVec
	startTime prometheus.Gauge
	registry  *prometheus.Registry
}

// NewMetrics creates a registry with Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dynfields"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help:      "Start time of the process in unix seconds",
		},
	)

	m.registry.MustRegister(
		m.buildInfo,
		m.startTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.startTime.Set(float64(time.Now().Unix()))

	return m
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every gathered metric to path in the text
// exposition format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
