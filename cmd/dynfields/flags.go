package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/vyrodovalexey/dynfields/internal/util"
)

// listFlag is a comma separated list flag that remembers whether it was
// given, so that "-fields=" can mean an empty allow-list.
type listFlag struct {
	values   []string
	set      bool
	explicit bool
}

// String implements flag.Value.
func (f *listFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.values, ",")
}

// Set implements flag.Value. Repeated flags are concatenated and replace
// any value taken from the environment.
func (f *listFlag) Set(s string) error {
	if !f.explicit {
		f.values = []string{}
	}
	f.values = append(f.values, util.SplitList(s)...)
	f.set = true
	f.explicit = true
	return nil
}

// list returns the values, or nil when the flag was never set.
func (f *listFlag) list() []string {
	if !f.set {
		return nil
	}
	return f.values
}

// listFromEnv presets f from an environment variable when it is non-empty.
// An empty variable counts as unset, as with getEnvOrDefault.
func listFromEnv(key string) listFlag {
	var f listFlag
	if value := os.Getenv(key); value != "" {
		f.values = append([]string{}, util.SplitList(value)...)
		f.set = true
	}
	return f
}

// cliFlags holds command line flags.
type cliFlags struct {
	configPath    string
	profile       string
	fields        listFlag
	excludeFields listFlag
	input         string
	inputFormat   string
	outputFormat  string
	pretty        bool
	logLevel      string
	logFormat     string
	metricsFile   string
	showVersion   bool
}

// parseFlags parses command line arguments. Defaults come from
// DYNFIELDS_* environment variables.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	fs := flag.NewFlagSet("dynfields", flag.ContinueOnError)
	fs.SetOutput(output)

	flags := cliFlags{
		fields:        listFromEnv("DYNFIELDS_FIELDS"),
		excludeFields: listFromEnv("DYNFIELDS_EXCLUDE_FIELDS"),
	}

	fs.StringVar(&flags.configPath, "config", getEnvOrDefault("DYNFIELDS_CONFIG", ""),
		"Path to configuration file")
	fs.StringVar(&flags.profile, "profile", getEnvOrDefault("DYNFIELDS_PROFILE", ""),
		"Named field selection profile from the configuration file")
	fs.Var(&flags.fields, "fields",
		"Comma separated allow-list of fields; an empty value removes every field")
	fs.Var(&flags.excludeFields, "exclude-fields",
		"Comma separated deny-list of fields")
	fs.StringVar(&flags.input, "input", getEnvOrDefault("DYNFIELDS_INPUT", "-"),
		"Input file, or - for stdin")
	fs.StringVar(&flags.inputFormat, "input-format", getEnvOrDefault("DYNFIELDS_INPUT_FORMAT", "json"),
		"Input format (json, yaml)")
	fs.StringVar(&flags.outputFormat, "output-format", getEnvOrDefault("DYNFIELDS_OUTPUT_FORMAT", ""),
		"Output format (json, yaml); defaults to the configured content type")
	fs.BoolVar(&flags.pretty, "pretty", getEnvBool("DYNFIELDS_PRETTY", false),
		"Pretty print JSON output")
	fs.StringVar(&flags.logLevel, "log-level", getEnvOrDefault("DYNFIELDS_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides the configuration file")
	fs.StringVar(&flags.logFormat, "log-format", getEnvOrDefault("DYNFIELDS_LOG_FORMAT", ""),
		"Log format (json, console); overrides the configuration file")
	fs.StringVar(&flags.metricsFile, "metrics-file", getEnvOrDefault("DYNFIELDS_METRICS_FILE", ""),
		"Write Prometheus metrics to this file on exit (textfile collector format)")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	return flags, nil
}
