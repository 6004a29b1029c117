package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to the user but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is the flag name the
// finding is about.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// FirstError returns the first error-severity issue, or nil.
func FirstError(issues []Issue) error {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return iss
		}
	}
	return nil
}

// Validate performs static checks over c without touching the filesystem.
// Callers decide whether warnings are fatal; errors always are.
func Validate(c *Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Input) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input",
			Message:  "input path must not be empty",
		})
	}
	if strings.TrimSpace(c.Output) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output",
			Message:  "output path must not be empty",
		})
	}
	if c.Input != "" && c.Output != "" && filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output",
			Message:  "output is the same file as input; the original will be replaced",
		})
	}

	issues = append(issues, validateDialect(c)...)

	if c.Workers < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "workers",
			Message:  fmt.Sprintf("workers=%d; at least one worker is required", c.Workers),
		})
	}

	issues = append(issues, validateMetrics(c)...)
	return issues
}

func validateDialect(c *Config) []Issue {
	var issues []Issue

	r, size := utf8.DecodeRuneInString(c.Delimiter)
	switch {
	case c.Delimiter == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  "delimiter must not be empty",
		})
	case size != len(c.Delimiter) || r == utf8.RuneError:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  fmt.Sprintf("delimiter %q must be a single character", c.Delimiter),
		})
	case r == '"' || r == '\r' || r == '\n':
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  fmt.Sprintf("delimiter %q cannot be a quote or line break", c.Delimiter),
		})
	}

	if c.Encoding != "" {
		if _, err := htmlindex.Get(c.Encoding); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "encoding",
				Message:  fmt.Sprintf("unknown encoding %q", c.Encoding),
			})
		}
	}

	for _, na := range c.NAValues {
		if na == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "na-values",
				Message:  "empty na-value is redundant; empty cells are always missing",
			})
			break
		}
	}
	return issues
}

func validateMetrics(c *Config) []Issue {
	var issues []Issue

	switch c.MetricsBackend {
	case "", MetricsNone:
	case MetricsPushgateway:
		if strings.TrimSpace(c.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "pushgateway-url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case MetricsDatadog:
		if strings.TrimSpace(c.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "datadog-addr",
				Message:  "datadog backend requires an address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics-backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", c.MetricsBackend),
		})
	}

	if c.MetricsBackend != "" && c.MetricsBackend != MetricsNone && strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels every metric",
		})
	}
	return issues
}
