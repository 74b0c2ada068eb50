package serializer

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as metric labels.
const (
	OperationBuild         = "build"
	OperationRepresent     = "represent"
	OperationRepresentList = "represent_list"
	OperationInternalValue = "internal_value"
	OperationEncode        = "encode"
	OperationDecode        = "decode"
)

// SerializerMetrics contains Prometheus metrics for serializer operations.
type SerializerMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	fieldsRemoved     *prometheus.CounterVec
	planLookups       *prometheus.CounterVec
}

var (
	serializerMetricsInstance *SerializerMetrics
	serializerMetricsOnce     sync.Once
)

// GetSerializerMetrics returns the singleton serializer metrics instance.
func GetSerializerMetrics() *SerializerMetrics {
	serializerMetricsOnce.Do(func() {
		serializerMetricsInstance = &SerializerMetrics{
			operationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dynfields",
					Subsystem: "serializer",
					Name:      "operations_total",
					Help:      "Total number of serializer operations",
				},
				[]string{"operation", "result"},
			),
			operationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "dynfields",
					Subsystem: "serializer",
					Name:      "operation_duration_seconds",
					Help:      "Duration of serializer operations in seconds",
					Buckets: []float64{
						.00001, .00005, .0001, .0005,
						.001, .005, .01, .05,
					},
				},
				[]string{"operation"},
			),
			fieldsRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dynfields",
					Subsystem: "serializer",
					Name:      "fields_removed_total",
					Help:      "Total number of fields removed by field selection",
				},
				[]string{"stage"},
			),
			planLookups: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dynfields",
					Subsystem: "serializer",
					Name:      "plan_cache_lookups_total",
					Help:      "Total number of struct plan cache lookups",
				},
				[]string{"result"},
			),
		}
	})
	return serializerMetricsInstance
}

// MustRegister registers all serializer metric collectors with the given
// Prometheus registry. promauto registers them with the default registry;
// this bridges them to a custom one.
func (m *SerializerMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.fieldsRemoved,
		m.planLookups,
	)
}

// Init pre-initializes common label combinations with zero values so
// that the series exist before the first operation.
func (m *SerializerMetrics) Init() {
	for _, op := range []string{
		OperationBuild, OperationRepresent, OperationRepresentList,
		OperationInternalValue, OperationEncode, OperationDecode,
	} {
		for _, result := range []string{"success", "error"} {
			m.operationsTotal.WithLabelValues(op, result)
		}
		m.operationDuration.WithLabelValues(op)
	}
	for _, stage := range []string{StageAllow, StageDeny} {
		m.fieldsRemoved.WithLabelValues(stage)
	}
	for _, result := range []string{"hit", "miss"} {
		m.planLookups.WithLabelValues(result)
	}
}

// RecordOperation records a serializer operation and its duration.
func (m *SerializerMetrics) RecordOperation(operation, result string, seconds float64) {
	m.operationsTotal.WithLabelValues(operation, result).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordFieldsRemoved records fields removed by a filter stage.
func (m *SerializerMetrics) RecordFieldsRemoved(stage string, n int) {
	m.fieldsRemoved.WithLabelValues(stage).Add(float64(n))
}

// RecordPlanLookup records a struct plan cache hit or miss.
func (m *SerializerMetrics) RecordPlanLookup(result string) {
	m.planLookups.WithLabelValues(result).Inc()
}
