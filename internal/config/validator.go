package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/vyrodovalexey/dynfields/internal/encoding"
	"github.com/vyrodovalexey/dynfields/internal/util"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Is makes errors.Is(err, util.ErrConfigInvalid) hold for any non-empty
// collection.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid && e.HasErrors()
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
	validLogOutputs = []string{"stdout", "stderr"}
)

// Validator validates dynfields configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a configuration.
func ValidateConfig(config *Config) error {
	return NewValidator().Validate(config)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *Config) error {
	v.errors = make(ValidationErrors, 0)

	if config == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateLogging(&config.Logging)
	v.validateTracing(&config.Tracing)
	v.validateCache(&config.Cache)
	v.validateEncoding(&config.Encoding)
	v.validateProfiles(config)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateLogging(cfg *LoggingConfig) {
	if !lo.Contains(validLogLevels, cfg.Level) {
		v.addError("logging.level", fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if !lo.Contains(validLogFormats, cfg.Format) {
		v.addError("logging.format", fmt.Sprintf("must be one of %s", strings.Join(validLogFormats, ", ")))
	}
	if !lo.Contains(validLogOutputs, cfg.Output) {
		v.addError("logging.output", fmt.Sprintf("must be one of %s", strings.Join(validLogOutputs, ", ")))
	}
}

func (v *Validator) validateTracing(cfg *TracingConfig) {
	if cfg.SamplingRate < 0 || cfg.SamplingRate > 1 {
		v.addError("tracing.samplingRate", "must be between 0 and 1")
	}
	if cfg.Enabled && cfg.ServiceName == "" {
		v.addError("tracing.serviceName", "serviceName is required when tracing is enabled")
	}
}

func (v *Validator) validateCache(cfg *CacheConfig) {
	if cfg.MaxTypes <= 0 {
		v.addError("cache.maxTypes", "must be positive")
	}
}

func (v *Validator) validateEncoding(cfg *EncodingConfig) {
	if !encoding.IsSupported(cfg.ContentType) {
		v.addError("encoding.contentType", fmt.Sprintf("unsupported content type %q", cfg.ContentType))
	}
}

func (v *Validator) validateProfiles(config *Config) {
	for _, name := range config.ProfileNames() {
		path := "profiles." + name
		if err := util.ValidateFieldName(name); err != nil {
			v.addError(path, "invalid profile name")
		}

		sel := config.Profiles[name]
		if err := util.ValidateFieldNames(sel.Fields); err != nil {
			v.addError(path+".fields", err.Error())
		}
		if err := util.ValidateFieldNames(sel.ExcludeFields); err != nil {
			v.addError(path+".excludeFields", err.Error())
		}
	}
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}
