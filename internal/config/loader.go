package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/dynfields/internal/util"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Loader handles configuration loading from files and readers.
type Loader struct {
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new configuration loader that reads the process
// environment.
func NewLoader() *Loader {
	return &Loader{lookupEnv: os.LookupEnv}
}

// LoadConfig loads configuration from a file path.
func LoadConfig(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	return NewLoader().LoadFromReader(r)
}

// Load loads configuration from a file path.
func (l *Loader) Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, util.NewConfigError("path", "config file path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, util.WrapError(err, "failed to resolve path "+path)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, util.WrapError(err, "failed to read config file "+path)
	}

	return l.parseConfig(data)
}

// LoadFromReader loads configuration from an io.Reader.
func (l *Loader) LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, util.WrapError(err, "failed to read config")
	}

	return l.parseConfig(data)
}

// parseConfig parses YAML data over the default configuration. Keys not
// present in data keep their default values.
func (l *Loader) parseConfig(data []byte) (*Config, error) {
	content := l.substituteEnvVars(string(data))

	config := DefaultConfig()
	if len(bytes.TrimSpace([]byte(content))) == 0 {
		return config, nil
	}

	decoder := yaml.NewDecoder(strings.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return config, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment variable values. $$ produces a literal dollar sign.
func (l *Loader) substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""
		if len(submatches) >= 3 {
			defaultValue = submatches[2]
		}

		if value, exists := l.lookupEnv(varName); exists {
			return value
		}
		return defaultValue
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}
