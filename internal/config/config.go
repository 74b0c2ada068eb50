package config

import (
	"sort"

	"github.com/samber/lo"

	"github.com/vyrodovalexey/dynfields/internal/encoding"
	"github.com/vyrodovalexey/dynfields/internal/observability"
	"github.com/vyrodovalexey/dynfields/internal/serializer"
	"github.com/vyrodovalexey/dynfields/internal/util"
)

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig                        `yaml:"logging" json:"logging"`
	Tracing  TracingConfig                        `yaml:"tracing" json:"tracing"`
	Cache    CacheConfig                          `yaml:"cache" json:"cache"`
	Encoding EncodingConfig                       `yaml:"encoding" json:"encoding"`
	Profiles map[string]serializer.FieldSelection `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
}

// CacheConfig configures the struct plan cache.
type CacheConfig struct {
	// MaxTypes is the number of struct types whose field plans are cached.
	MaxTypes int64 `yaml:"maxTypes" json:"maxTypes"`
}

// EncodingConfig configures output encoding.
type EncodingConfig struct {
	ContentType string `yaml:"contentType" json:"contentType"`
	PrettyPrint bool   `yaml:"prettyPrint" json:"prettyPrint"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	logCfg := observability.DefaultLogConfig()

	return &Config{
		Logging: LoggingConfig{
			Level:  logCfg.Level,
			Format: logCfg.Format,
			Output: logCfg.Output,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "dynfields",
			SamplingRate: 1.0,
		},
		Cache: CacheConfig{
			MaxTypes: serializer.DefaultPlanCacheSize,
		},
		Encoding: EncodingConfig{
			ContentType: encoding.ContentTypeJSON,
		},
	}
}

// LogConfig converts the logging section for observability.NewLogger.
func (c LoggingConfig) LogConfig() observability.LogConfig {
	return observability.LogConfig{
		Level:  c.Level,
		Format: c.Format,
		Output: c.Output,
	}
}

// TracerConfig converts the tracing section for observability.NewTracer.
func (c TracingConfig) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:  c.ServiceName,
		OTLPEndpoint: c.OTLPEndpoint,
		SamplingRate: c.SamplingRate,
		Enabled:      c.Enabled,
	}
}

// Profile returns a copy of the named field selection.
func (c *Config) Profile(name string) (serializer.FieldSelection, error) {
	sel, ok := c.Profiles[name]
	if !ok {
		return serializer.FieldSelection{}, util.NewConfigErrorWithCause(
			"profiles."+name, "profile is not defined", util.ErrNotFound)
	}
	return sel.Clone(), nil
}

// ProfileNames returns the defined profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := lo.Keys(c.Profiles)
	sort.Strings(names)
	return names
}
