package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"examimport/internal/config"
	"examimport/internal/importer"
	"examimport/internal/loader"
	"examimport/internal/logging"
	"examimport/internal/metrics"
	"examimport/internal/metrics/datadog"
	"examimport/internal/metrics/prompush"
	"examimport/internal/progress"
	"examimport/internal/skiplog"
	"examimport/internal/storage"

	// register all backends with the storage factory.
	_ "examimport/internal/storage/all"
)

type runParams struct {
	cfg      config.Config
	args     []string
	wd       string
	progress bool
	stdout   io.Writer
	stderr   io.Writer
}

func run(ctx context.Context, p runParams) error {
	runID := uuid.NewString()
	lg := logging.Setup(p.cfg.LogLevel, p.cfg.LogFormat, p.stderr).With("run_id", runID)

	rooms, students, ignored := resolvePaths(p.args, p.cfg, p.wd)
	if ignored {
		lg.Warn("a single file argument is ignored; pass both files or none",
			"arg", p.args[0], "rooms", rooms, "students", students)
	}

	flush := setupMetrics(p.cfg, runID, lg)
	defer flush()

	repo, err := storage.New(ctx, p.cfg.Storage())
	if err != nil {
		lg.Error("connect failed", "driver", p.cfg.Driver, "err", err)
		return err
	}
	defer repo.Close()

	opts := []loader.Option{
		loader.WithBatchSize(p.cfg.BatchSize),
		loader.WithLogger(lg),
		loader.WithEncoding(p.cfg.Encoding),
	}
	if p.progress {
		opts = append(opts, loader.WithProgress(progress.New(p.stderr)))
	}
	if p.cfg.Rejects != "" {
		path := absPath(p.wd, p.cfg.Rejects)
		rej, err := skiplog.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := rej.Close(); err != nil {
				lg.Warn("closing rejects file failed", "path", path, "err", err)
			}
			lg.Info("rejects written", "path", path, "counts", rej.Counts())
		}()
		opts = append(opts, loader.WithRejects(rej))
	}

	kind := p.cfg.Driver
	im := importer.New(loader.New(repo, opts...),
		importer.WithLogger(lg),
		importer.WithTypes(func(literal string) string { return storage.TypeFor(kind, literal) }),
	)

	sums, err := im.Run(ctx, rooms, students)
	printSummary(p.stdout, sums)
	if err != nil {
		lg.Error("import failed", "err", err)
		return err
	}
	return nil
}

// resolvePaths picks the input files. Two or more arguments name the room and
// student files; otherwise the configured paths are used, and ignored reports
// that a lone argument was dropped. Relative paths resolve against wd.
func resolvePaths(args []string, cfg config.Config, wd string) (rooms, students string, ignored bool) {
	rooms, students = cfg.Rooms, cfg.Students
	switch {
	case len(args) >= 2:
		rooms, students = args[0], args[1]
	case len(args) == 1:
		ignored = true
	}
	return absPath(wd, rooms), absPath(wd, students), ignored
}

func absPath(wd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(wd, p)
}

// setupMetrics installs the configured backend and returns the flush to run
// on exit. A backend that cannot be built leaves metrics disabled.
func setupMetrics(cfg config.Config, runID string, lg *slog.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err = prompush.NewBackend("examimport", cfg.PushgatewayURL, map[string]string{"run_id": runID})
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  "examimport.",
			GlobalTags: []string{"run_id:" + runID},
		})
	default:
		lg.Debug("metrics disabled", "backend", cfg.MetricsBackend)
		return func() {}
	}
	if err != nil {
		lg.Warn("metrics backend unavailable; metrics disabled", "backend", cfg.MetricsBackend, "err", err)
		return func() {}
	}

	metrics.SetBackend(b)
	lg.Info("metrics enabled", "backend", cfg.MetricsBackend)
	return func() {
		if err := metrics.Flush(); err != nil {
			lg.Warn("metrics flush failed", "err", err)
		}
	}
}

func printSummary(w io.Writer, sums []loader.Summary) {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	for _, s := range sums {
		status := ok("OK")
		switch {
		case s.Phase == loader.PhaseFailed:
			status = bad("FAILED")
		case s.Empty:
			status = warn("EMPTY")
		case s.FallbackFailed > 0 || s.ConversionErrors > 0 || s.ShortRows > 0:
			status = warn("WARN")
		}
		fmt.Fprintf(w, "%-7s %s  rows=%d inserted=%d count=%d rejected=%d bad_values=%d short=%d  %s\n",
			s.Table, status, s.RowsRead, s.Inserted, s.Count, s.FallbackFailed,
			s.ConversionErrors, s.ShortRows, s.Duration.Round(time.Millisecond))
	}
}
