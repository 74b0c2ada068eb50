package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/dynfields/internal/util"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "dynfields.yaml")

	configContent := `
logging:
  level: debug
cache:
  maxTypes: 64
encoding:
  contentType: application/yaml
  prettyPrint: true
profiles:
  public:
    excludeFields: [password]
  summary:
    fields: [id, name]
  nothing:
    fields: []
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "unset keys keep defaults")
	assert.Equal(t, int64(64), cfg.Cache.MaxTypes)
	assert.Equal(t, "application/yaml", cfg.Encoding.ContentType)
	assert.True(t, cfg.Encoding.PrettyPrint)

	require.Len(t, cfg.Profiles, 3)
	assert.Nil(t, cfg.Profiles["public"].Fields)
	assert.Equal(t, []string{"password"}, cfg.Profiles["public"].ExcludeFields)
	assert.Equal(t, []string{"id", "name"}, cfg.Profiles["summary"].Fields)
	assert.NotNil(t, cfg.Profiles["nothing"].Fields)
	assert.Empty(t, cfg.Profiles["nothing"].Fields)

	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig("/nonexistent/path/dynfields.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"", "   "} {
		_, err := LoadConfig(path)
		require.Error(t, err)

		var cfgErr *util.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "path", cfgErr.Field)
		assert.ErrorIs(t, err, util.ErrConfigInvalid)
	}
}

func TestLoadConfigFromReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name:    "empty input gives defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name:    "tracing section",
			content: "tracing:\n  enabled: true\n  samplingRate: 0.25\n  otlpEndpoint: collector:4317\n",
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Tracing.Enabled)
				assert.Equal(t, "collector:4317", cfg.Tracing.OTLPEndpoint)
				assert.Equal(t, 0.25, cfg.Tracing.SamplingRate)
				assert.Equal(t, "dynfields", cfg.Tracing.ServiceName)
			},
		},
		{
			name:    "invalid yaml",
			content: "logging: [",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown key",
			content: "listeners: []\n",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadConfigFromReader(strings.NewReader(tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigFromReader_ReadError(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromReader(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoader_SubstituteEnvVars(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"LOG_LEVEL": "warn",
		"EMPTY":     "",
	}
	loader := &Loader{lookupEnv: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "set variable", input: "level: ${LOG_LEVEL}", expected: "level: warn"},
		{name: "default unused", input: "level: ${LOG_LEVEL:-info}", expected: "level: warn"},
		{name: "default used", input: "level: ${MISSING:-info}", expected: "level: info"},
		{name: "missing without default", input: "level: ${MISSING}", expected: "level: "},
		{name: "set but empty", input: "level: ${EMPTY:-info}", expected: "level: "},
		{name: "escaped dollar", input: "price: $$5", expected: "price: $5"},
		{name: "no variables", input: "plain: text", expected: "plain: text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, loader.substituteEnvVars(tt.input))
		})
	}
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	t.Setenv("DYNFIELDS_TEST_MAX_TYPES", "32")

	cfg, err := LoadConfigFromReader(strings.NewReader(
		"cache:\n  maxTypes: ${DYNFIELDS_TEST_MAX_TYPES:-8}\nlogging:\n  format: ${DYNFIELDS_TEST_UNSET:-console}\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(32), cfg.Cache.MaxTypes)
	assert.Equal(t, "console", cfg.Logging.Format)
}
