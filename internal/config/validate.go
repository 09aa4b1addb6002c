package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"examimport/internal/logging"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is the config key
// (e.g. "driver", "metrics_backend").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over cfg. It does not mutate cfg and does
// not contact the store or open the input files.
func Validate(cfg Config) []Issue {
	var issues []Issue
	issues = append(issues, validateStorage(cfg)...)
	issues = append(issues, validateInput(cfg)...)
	issues = append(issues, validateLogging(cfg)...)
	issues = append(issues, validateMetrics(cfg)...)
	return issues
}

func validateStorage(cfg Config) []Issue {
	var issues []Issue

	switch strings.TrimSpace(cfg.Driver) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "driver",
			Message:  "driver must not be empty",
		})
	case "sqlite":
		if strings.TrimSpace(cfg.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dsn",
				Message:  "sqlite requires a dsn (a database file path or :memory:)",
			})
		}
	case "mysql", "postgres":
		if strings.TrimSpace(cfg.DSN) == "" {
			if strings.TrimSpace(cfg.Host) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "host",
					Message:  "host must not be empty when no dsn is given",
				})
			}
			if strings.TrimSpace(cfg.Database) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "database",
					Message:  "database must not be empty when no dsn is given",
				})
			}
		}
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "driver",
			Message:  fmt.Sprintf("unknown driver %q; want mysql, postgres or sqlite", cfg.Driver),
		})
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "port",
			Message:  fmt.Sprintf("port=%d is out of range", cfg.Port),
		})
	}
	if cfg.DSN != "" && cfg.Driver != "sqlite" && (cfg.Port != 0 || cfg.Password != "") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "dsn",
			Message:  "dsn is set; the discrete connection fields are ignored",
		})
	}
	return issues
}

func validateInput(cfg Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(cfg.Rooms) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "rooms",
			Message:  "rooms file path must not be empty",
		})
	}
	if strings.TrimSpace(cfg.Students) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "students",
			Message:  "students file path must not be empty",
		})
	}
	if cfg.Rooms != "" && cfg.Rooms == cfg.Students {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "students",
			Message:  "rooms and students point at the same file",
		})
	}
	if cfg.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the default of %d is used", cfg.BatchSize, DefaultBatchSize),
		})
	}
	if enc := strings.TrimSpace(cfg.Encoding); enc != "" {
		if _, err := htmlindex.Get(enc); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "encoding",
				Message:  fmt.Sprintf("unsupported encoding %q", enc),
			})
		}
	}
	return issues
}

func validateLogging(cfg Config) []Issue {
	var issues []Issue
	if !logging.ValidLevel(cfg.LogLevel) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log_level",
			Message:  fmt.Sprintf("unknown log level %q; want debug, info, warn or error", cfg.LogLevel),
		})
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log_format",
			Message:  fmt.Sprintf("unknown log format %q; want text or json", cfg.LogFormat),
		})
	}
	return issues
}

func validateMetrics(cfg Config) []Issue {
	var issues []Issue
	switch cfg.MetricsBackend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(cfg.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "pushgateway_url",
				Message:  "pushgateway metrics need a pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(cfg.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "datadog_addr",
				Message:  "datadog metrics need a datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics_backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want none, pushgateway or datadog", cfg.MetricsBackend),
		})
	}
	return issues
}
