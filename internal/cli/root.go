// Package cli wires the csvclean command line to the cleaning pipeline.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"csvclean/internal/config"
	"csvclean/internal/metrics"
	"csvclean/internal/metrics/datadog"
	"csvclean/internal/metrics/prompush"
	"csvclean/internal/pipeline"
)

// NewRootCommand builds the csvclean command. Flag defaults are seeded from
// getenv; progress lines go to stdout and diagnostics to stderr.
func NewRootCommand(getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "csvclean --input <path> --output <path>",
		Short: "Clean a CSV file",
		Long: `csvclean reads a CSV file, applies a fixed sequence of cleaning steps and
writes the result:

  1. standardize column names to snake_case
  2. trim whitespace around text values
  3. detect date columns and rewrite them as YYYY-MM-DD (--infer-dates)
  4. drop duplicate rows, by --id-col when given, otherwise by whole row
  5. fill missing values: 0 in numeric columns, "" elsewhere

Every flag can also be set through the environment (CSVCLEAN_INPUT,
CSVCLEAN_OUTPUT, CSVCLEAN_ID_COL, ...); a .env file in the working directory
is read first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cfg = config.Bind(cmd.Flags(), getenv)
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, stdout, stderr io.Writer) error {
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := config.FirstError(issues); err != nil {
		return err
	}

	if cfg.Verbose {
		log.SetOutput(stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	b, err := newMetricsBackend(cfg)
	if err != nil {
		log.Printf("metrics: %v; using nop", err)
	} else if b != nil {
		log.Printf("metrics: backend=%s job=%s", cfg.MetricsBackend, cfg.Job)
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				fmt.Fprintf(stderr, "metrics: flush error: %v\n", err)
			}
		}()
	}

	_, err = pipeline.Run(cmd.Context(), cfg, log.New(stdout, "", 0))
	return err
}

// newMetricsBackend returns the backend selected by cfg, or nil when metrics
// are disabled.
func newMetricsBackend(cfg *config.Config) (metrics.Backend, error) {
	switch cfg.MetricsBackend {
	case config.MetricsPushgateway:
		b, err := prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.MetricsDatadog:
		b, err := datadog.NewBackend(datadog.Config{Addr: cfg.DatadogAddr})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, nil
	}
}

// Execute loads .env, runs the root command against the process arguments
// and returns the first error. Errors are printed to stderr.
func Execute() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(os.Getenv, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
