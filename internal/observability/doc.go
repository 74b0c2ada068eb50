// Package observability provides logging, tracing and metrics
// functionality for dynfields.
//
// # Logging
//
// The Logger interface provides structured logging backed by zap:
//
//	logger, err := observability.NewLogger(observability.DefaultLogConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("records serialized",
//	    observability.Int("count", 12),
//	)
//
// # Tracing
//
// OpenTelemetry tracing. Library code asks for a tracer with
// ComponentTracer; binaries install an SDK provider with NewTracer:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName:  "dynfields",
//	    SamplingRate: 1.0,
//	    Enabled:      true,
//	})
//	defer tracer.Shutdown(ctx)
//
// Spans are exported over OTLP gRPC when TracerConfig.OTLPEndpoint is set.
//
// # Metrics
//
// NewMetrics creates a process registry; WriteTextfile dumps it for the
// node_exporter textfile collector at the end of a batch run.
package observability
