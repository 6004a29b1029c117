// Package config centralizes csvclean configuration. Every tunable is a
// command-line flag whose default is seeded from an environment variable,
// so `--help` lists all knobs and deployments can configure the tool
// without flags.
//
// Typical usage from a cobra command:
//
//	cfg := config.Bind(cmd.Flags(), os.Getenv)
//	// cobra parses the flags, then:
//	issues := config.Validate(cfg)
//
// For tests, LoadFromArgs binds and parses a private FlagSet in one call:
//
//	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"--workers=4"})
package config

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
)

// Metrics backend names accepted by MetricsBackend.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Defaults applied when neither a flag nor an environment variable is set.
const (
	DefaultDelimiter      = ","
	DefaultEncoding       = "utf-8"
	DefaultWorkers        = 1
	DefaultJob            = "csvclean"
	DefaultPushgatewayURL = "http://localhost:9091"
	DefaultDatadogAddr    = "127.0.0.1:8125"
)

// Config holds all process configuration derived from flags and environment
// variables. It is a plain value and safe to copy after construction.
type Config struct {
	// IO
	Input  string // CSV file to clean.
	Output string // Destination of the cleaned CSV.

	// Cleaning
	IDCol      string // Column identifying duplicates; empty means full-row.
	InferDates bool   // Run the date inference stage.

	// Reader/writer dialect
	Delimiter   string   // Single-character field separator.
	Encoding    string   // Charset label of the input file.
	NAValues    []string // Extra spellings read as missing.
	NoDefaultNA bool     // Only empty cells are missing.

	// Runtime
	Workers int // Columns examined concurrently during date inference.

	// Metrics
	Job            string // Metrics job label.
	MetricsBackend string // "none", "pushgateway" or "datadog".
	PushgatewayURL string
	DatadogAddr    string

	Verbose bool
}

// Comma returns the delimiter as a rune. Callers should Validate first; an
// invalid delimiter yields ','.
func (c *Config) Comma() rune {
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError || size != len(c.Delimiter) {
		return ','
	}
	return r
}

// Bind defines csvclean's flags on fs with defaults seeded through getenv
// and returns the Config they populate once fs is parsed.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit flags override the seeded defaults.
func Bind(fs *pflag.FlagSet, getenv func(string) string) *Config {
	cfg := &Config{}

	envOrDefault := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefault := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefault := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	fs.StringVar(&cfg.Input, "input", getenv("CSVCLEAN_INPUT"), "Path to the CSV file to clean")
	fs.StringVar(&cfg.Output, "output", getenv("CSVCLEAN_OUTPUT"), "Path of the cleaned CSV (directories are created)")
	fs.StringVar(&cfg.IDCol, "id-col", getenv("CSVCLEAN_ID_COL"), "Column used to identify duplicates (default: whole row)")
	fs.BoolVar(&cfg.InferDates, "infer-dates", boolEnvOrDefault("CSVCLEAN_INFER_DATES", false), "Detect date columns and rewrite them as YYYY-MM-DD")

	fs.StringVar(&cfg.Delimiter, "delimiter", envOrDefault("CSVCLEAN_DELIMITER", DefaultDelimiter), "Field delimiter for input and output")
	fs.StringVar(&cfg.Encoding, "encoding", envOrDefault("CSVCLEAN_ENCODING", DefaultEncoding), "Character set of the input file")
	fs.StringArrayVar(&cfg.NAValues, "na-values", nil, "Additional cell value read as missing (repeatable)")
	fs.BoolVar(&cfg.NoDefaultNA, "no-default-na", false, "Only empty cells are missing; disables NA, null, N/A, ...")

	fs.IntVar(&cfg.Workers, "workers", intEnvOrDefault("CSVCLEAN_WORKERS", DefaultWorkers), "Columns examined concurrently during date inference")

	fs.StringVar(&cfg.Job, "job", envOrDefault("CSVCLEAN_JOB", DefaultJob), "Job name used to label metrics")
	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOrDefault("METRICS_BACKEND", MetricsNone), "Metrics backend: none, pushgateway or datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", envOrDefault("PUSHGATEWAY_URL", DefaultPushgatewayURL), "Pushgateway base URL")
	fs.StringVar(&cfg.DatadogAddr, "datadog-addr", envOrDefault("DATADOG_ADDR", DefaultDatadogAddr), "DogStatsD address (host:port or unix:///path)")

	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logs on stderr")

	return cfg
}

// LoadFromArgs binds the flags on fs, parses args and returns the Config.
// Callers supply a private FlagSet and a map-backed getenv to stay hermetic.
func LoadFromArgs(fs *pflag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := Bind(fs, getenv)
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
