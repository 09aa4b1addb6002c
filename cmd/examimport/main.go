// Command examimport loads the exam room and student CSV files into a
// relational store.
//
//	examimport [rooms.csv students.csv] [flags]
//
// With no file arguments ./room.csv and ./student.csv are used. A single file
// argument is ignored with a warning. Settings come from defaults, an optional
// --config file, .env and the environment, then flags; see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"examimport/internal/config"
)

// options holds the raw flag values. Only flags the user actually set
// override the lower configuration layers.
type options struct {
	configPath     string
	driver         string
	dsn            string
	batchSize      int
	encoding       string
	logLevel       string
	logFormat      string
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
	rejects        string
	progress       bool
	validate       bool
}

var errInvalidConfig = errors.New("configuration is invalid")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr, os.Getenv).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "examimport:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer, getenv func(string) string) *cobra.Command {
	var opt options

	cmd := &cobra.Command{
		Use:   "examimport [rooms.csv students.csv]",
		Short: "Load exam room and student CSV files into a database",
		Long: `examimport creates the room and student tables when missing and loads
the two CSV files into them, rooms first. Rows are inserted in batches; a
failed batch is retried row by row so one bad row does not lose its batch.

Examples:

  examimport
  examimport /data/room.csv /data/student.csv --driver postgres --dsn postgres://...
  examimport --driver sqlite --dsn exam.db --progress
`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opt, getenv)
			if err != nil {
				return err
			}

			issues := config.Validate(cfg)
			for _, iss := range issues {
				fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return errInvalidConfig
			}
			if opt.validate {
				fmt.Fprintln(stdout, "configuration is valid")
				return nil
			}

			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("working directory: %w", err)
			}
			return run(cmd.Context(), runParams{
				cfg:      cfg,
				args:     args,
				wd:       wd,
				progress: opt.progress,
				stdout:   stdout,
				stderr:   stderr,
			})
		},
	}

	bindFlags(cmd.Flags(), &opt)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func bindFlags(f *pflag.FlagSet, opt *options) {
	f.StringVarP(&opt.configPath, "config", "c", "", "config file (.json, .yaml or .yml)")
	f.StringVar(&opt.driver, "driver", "", "storage driver: mysql, postgres or sqlite")
	f.StringVar(&opt.dsn, "dsn", "", "connection string, used verbatim")
	f.IntVar(&opt.batchSize, "batch-size", config.DefaultBatchSize, "records per INSERT statement")
	f.StringVar(&opt.encoding, "encoding", "", "input text encoding, e.g. gbk (default UTF-8)")
	f.StringVar(&opt.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	f.StringVar(&opt.logFormat, "log-format", "text", "log format: text or json")
	f.StringVar(&opt.metricsBackend, "metrics-backend", "none", "metrics backend: none, pushgateway or datadog")
	f.StringVar(&opt.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	f.StringVar(&opt.datadogAddr, "datadog-addr", "", "DogStatsD address, e.g. 127.0.0.1:8125")
	f.StringVar(&opt.rejects, "rejects", "", "write short rows, bad values and failed records to this CSV file")
	f.BoolVar(&opt.progress, "progress", false, "draw a progress bar per table on stderr")
	f.BoolVar(&opt.validate, "validate", false, "validate the configuration and exit")
}

// resolveConfig layers defaults, the config file, .env, the environment and
// the flags that were set.
func resolveConfig(f *pflag.FlagSet, opt options, getenv func(string) string) (config.Config, error) {
	cfg := config.Default()
	if opt.configPath != "" {
		if err := config.LoadFile(opt.configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("driver", &cfg.Driver, opt.driver)
	set("dsn", &cfg.DSN, opt.dsn)
	set("encoding", &cfg.Encoding, opt.encoding)
	set("log-level", &cfg.LogLevel, opt.logLevel)
	set("log-format", &cfg.LogFormat, opt.logFormat)
	set("metrics-backend", &cfg.MetricsBackend, opt.metricsBackend)
	set("pushgateway-url", &cfg.PushgatewayURL, opt.pushgatewayURL)
	set("datadog-addr", &cfg.DatadogAddr, opt.datadogAddr)
	set("rejects", &cfg.Rejects, opt.rejects)
	if f.Changed("batch-size") {
		cfg.BatchSize = opt.batchSize
	}
	return cfg, nil
}
