// Package main is the entry point for the dynfields command, which narrows
// JSON or YAML records to a selected set of fields.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/dynfields/internal/config"
	"github.com/vyrodovalexey/dynfields/internal/encoding"
	"github.com/vyrodovalexey/dynfields/internal/observability"
	"github.com/vyrodovalexey/dynfields/internal/serializer"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if flags.showVersion {
		printVersion(os.Stdout)
		return
	}

	cfg, err := loadAndValidateConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dynfields: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer func() { _ = logger.Sync() }()

	tracer := initTracer(cfg, logger)
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	metrics := initMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := runTraced(ctx, tracer, flags, cfg, os.Stdin, os.Stdout, logger)

	if flags.metricsFile != "" {
		if err := metrics.WriteTextfile(flags.metricsFile); err != nil {
			logger.Error("failed to write metrics",
				observability.String("path", flags.metricsFile),
				observability.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("dynfields failed", observability.Error(runErr))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "dynfields version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// loadAndValidateConfig loads the configuration file when one is given,
// applies logging overrides from flags and validates the result.
func loadAndValidateConfig(flags cliFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		loaded, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the global logger.
func initLogger(cfg *config.Config) observability.Logger {
	logger, err := observability.NewLogger(cfg.Logging.LogConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger = logger.With(observability.String("run_id", uuid.NewString()))
	observability.SetGlobalLogger(logger)
	return logger
}

// initMetrics creates the process registry and bridges the package
// metrics into it.
func initMetrics() *observability.Metrics {
	metrics := observability.NewMetrics("dynfields")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	serializerMetrics := serializer.GetSerializerMetrics()
	serializerMetrics.MustRegister(metrics.Registry())
	serializerMetrics.Init()
	encoding.GetEncodingMetrics().MustRegister(metrics.Registry())

	return metrics
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(cfg.Tracing.TracerConfig())
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}

	if cfg.Tracing.Enabled {
		logger.Debug("tracing enabled",
			observability.String("service", cfg.Tracing.ServiceName),
			observability.Float64("sampling_rate", cfg.Tracing.SamplingRate),
		)
	}
	return tracer
}
