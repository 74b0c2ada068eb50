package encoding

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EncodingMetrics contains Prometheus metrics for encoding operations.
type EncodingMetrics struct {
	encodeTotal *prometheus.CounterVec
	decodeTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
}

var (
	encodingMetricsInstance *EncodingMetrics
	encodingMetricsOnce     sync.Once
)

// GetEncodingMetrics returns the singleton encoding metrics instance.
func GetEncodingMetrics() *EncodingMetrics {
	encodingMetricsOnce.Do(func() {
		encodingMetricsInstance = &EncodingMetrics{
			encodeTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dynfields",
					Subsystem: "encoding",
					Name:      "encode_total",
					Help:      "Total number of encode operations",
				},
				[]string{"content_type", "result"},
			),
			decodeTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dynfields",
					Subsystem: "encoding",
					Name:      "decode_total",
					Help:      "Total number of decode operations",
				},
				[]string{"content_type", "result"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dynfields",
					Subsystem: "encoding",
					Name:      "errors_total",
					Help:      "Total number of encoding/decoding errors",
				},
				[]string{"content_type", "operation"},
			),
		}
	})
	return encodingMetricsInstance
}

// MustRegister registers the encoding collectors with a custom registry.
// promauto already registered them with the default registry.
func (m *EncodingMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.encodeTotal,
		m.decodeTotal,
		m.errorsTotal,
	)
}

// RecordEncode records an encode operation.
func (m *EncodingMetrics) RecordEncode(contentType, result string) {
	m.encodeTotal.WithLabelValues(contentType, result).Inc()
}

// RecordDecode records a decode operation.
func (m *EncodingMetrics) RecordDecode(contentType, result string) {
	m.decodeTotal.WithLabelValues(contentType, result).Inc()
}

// RecordError records an encoding/decoding error.
func (m *EncodingMetrics) RecordError(contentType, operation string) {
	m.errorsTotal.WithLabelValues(contentType, operation).Inc()
}
