// Package loader loads one delimited file into one table.
//
// A load creates the table, reads every row into memory as a record, writes
// the records in contiguous batches of multi-row INSERTs and finally counts
// the table's rows. A batch whose statement fails is retried one record at a
// time; records that still fail are logged and skipped. Each statement is its
// own unit of work, so a failed load may leave the table partially filled.
//
// Logging: DDL text, batch successes and the final count at info; short rows
// and empty input at warn; conversion failures, batch failures, per-record
// failures and fatal aborts at error. Every line carries the table name.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"examimport/internal/convert"
	"examimport/internal/ddl"
	"examimport/internal/logging"
	"examimport/internal/metrics"
	"examimport/internal/parser/csv"
	"examimport/internal/skiplog"
	"examimport/internal/storage"
)

// DefaultBatchSize is the number of records per INSERT statement.
const DefaultBatchSize = 1000

// Progress receives the number of records handled as batches complete.
type Progress interface {
	Start(label string, total int)
	Add(n int)
	Finish()
}

// Rejects receives every row problem the loader works around. index is the
// 1-based data row for short rows and conversion failures and the 0-based
// record index for insert failures.
type Rejects interface {
	Add(table, reason string, index int, detail string)
}

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the records per batch. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithJob sets the job label used for metrics. It defaults to the table name.
func WithJob(name string) Option {
	return func(l *Loader) { l.label = name }
}

// WithProgress reports write progress to p.
func WithProgress(p Progress) Option {
	return func(l *Loader) { l.progress = p }
}

// WithRejects reports short rows, conversion failures and records that failed
// to insert to r.
func WithRejects(r Rejects) Option {
	return func(l *Loader) { l.rejects = r }
}

// WithEncoding sets the character set input files are decoded from.
func WithEncoding(name string) Option {
	return func(l *Loader) { l.encoding = name }
}

// Loader runs loads against one repository. It is not safe for concurrent
// use.
type Loader struct {
	repo      storage.Repository
	batchSize int
	logger    *slog.Logger
	label     string
	progress  Progress
	rejects   Rejects
	encoding  string
}

// New returns a Loader writing to repo.
func New(repo storage.Repository, opts ...Option) *Loader {
	l := &Loader{
		repo:      repo,
		batchSize: DefaultBatchSize,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BatchSize returns the configured records per batch.
func (l *Loader) BatchSize() int { return l.batchSize }

// run carries the state of a single Load call.
type run struct {
	*Loader
	ctx   context.Context
	job   Job
	name  string
	log   *slog.Logger
	sum   Summary
	start time.Time
}

// Load runs one load. Fatal failures (invalid job, DDL, reading the file,
// the count query, cancellation) are returned as *LoadError; batch, record,
// value and short-row problems are logged and counted in the Summary.
func (l *Loader) Load(ctx context.Context, job Job) (Summary, error) {
	r := &run{
		Loader: l,
		ctx:    ctx,
		job:    job,
		name:   l.label,
		log:    l.logger.With("table", job.Table.Name),
		sum:    Summary{Table: job.Table.Name, Path: job.Path},
		start:  time.Now(),
	}
	if r.name == "" {
		r.name = job.Table.Name
	}

	if err := job.Validate(); err != nil {
		return r.fail(PhaseCreatingTable, err)
	}

	if err := r.step(PhaseCreatingTable, r.createTable); err != nil {
		return r.fail(PhaseCreatingTable, err)
	}

	var recs []*ddl.Record
	if err := r.step(PhaseReadingCSV, func() (err error) {
		recs, err = r.readRecords()
		return err
	}); err != nil {
		return r.fail(PhaseReadingCSV, err)
	}

	if len(recs) == 0 {
		r.log.Warn("no records to load", "path", job.Path, "rows_read", r.sum.RowsRead)
		r.sum.Empty = true
		metrics.RecordStep(r.name, PhaseEmpty.String(), nil, 0)
		return r.done(), nil
	}

	if err := r.step(PhaseWritingBatches, func() error { return r.writeBatches(recs) }); err != nil {
		return r.fail(PhaseWritingBatches, err)
	}

	if err := r.step(PhaseVerifying, r.verify); err != nil {
		return r.fail(PhaseVerifying, err)
	}

	return r.done(), nil
}

// step runs fn and records its outcome and duration.
func (r *run) step(p Phase, fn func() error) error {
	t0 := time.Now()
	err := fn()
	metrics.RecordStep(r.name, p.String(), err, time.Since(t0))
	return err
}

func (r *run) fail(p Phase, err error) (Summary, error) {
	r.sum.Phase = PhaseFailed
	r.sum.Duration = time.Since(r.start)
	metrics.RecordStep(r.name, PhaseFailed.String(), err, r.sum.Duration)
	r.log.Error("load aborted", "phase", p.String(), "err", err)
	return r.sum, &LoadError{Table: r.job.Table.Name, Phase: p, Err: err}
}

func (r *run) done() Summary {
	r.sum.Phase = PhaseDone
	r.sum.Duration = time.Since(r.start)
	metrics.RecordStep(r.name, PhaseDone.String(), nil, r.sum.Duration)
	metrics.RecordRow(r.name, "read", int64(r.sum.RowsRead))
	metrics.RecordRow(r.name, "kept", int64(r.sum.RecordsKept))
	metrics.RecordRow(r.name, "short_rows", int64(r.sum.ShortRows))
	metrics.RecordRow(r.name, "conversion_errors", int64(r.sum.ConversionErrors))
	metrics.RecordRow(r.name, "fallback_inserted", int64(r.sum.FallbackInserted))
	metrics.RecordRow(r.name, "fallback_failed", int64(r.sum.FallbackFailed))
	metrics.RecordBatches(r.name, "success", int64(r.sum.Batches-r.sum.FailedBatches))
	metrics.RecordBatches(r.name, "failure", int64(r.sum.FailedBatches))
	return r.sum
}

func (r *run) createTable() error {
	stmt := r.job.Table.CreateTableSQL()
	r.log.Info("creating table", "sql", stmt)
	if err := r.repo.Exec(r.ctx, stmt); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// readRecords drains the file into records. Rows shorter than the mapping
// lose the unreachable columns; values a converter rejects become nil.
func (r *run) readRecords() ([]*ddl.Record, error) {
	rd := csv.NewReader(r.job.Path, csv.Options{HasHeader: r.job.HasHeader, Encoding: r.encoding})

	var recs []*ddl.Record
	for row, err := range rd.Rows(r.ctx) {
		if err != nil {
			return nil, err
		}
		r.sum.RowsRead++
		if rec := r.toRecord(r.sum.RowsRead, row); rec.Len() > 0 {
			recs = append(recs, rec)
		}
	}

	r.sum.RecordsKept = len(recs)
	r.sum.Digest, r.sum.DigestOK = rd.Digest()
	r.log.Info("file read",
		"path", r.job.Path,
		"rows", r.sum.RowsRead,
		"records", r.sum.RecordsKept,
		"xxh3", fmt.Sprintf("%016x", r.sum.Digest),
	)
	return recs, nil
}

func (r *run) toRecord(n int, row []string) *ddl.Record {
	rec := ddl.NewRecord(len(r.job.Mapping))
	short := false
	for _, f := range r.job.Mapping {
		if f.Index >= len(row) {
			r.log.Warn("row too short for mapping",
				"row", n, "fields", len(row), "index", f.Index, "column", f.Column)
			r.reject(skiplog.ReasonShortRow, n, fmt.Sprintf("column %s: index %d beyond %d fields", f.Column, f.Index, len(row)))
			short = true
			continue
		}

		raw := convert.Trim(row[f.Index])
		conv, ok := r.job.Converters[f.Column]
		if !ok {
			rec.Set(f.Column, raw)
			continue
		}
		v, err := conv(raw)
		if err != nil {
			r.log.Error("value conversion failed", "row", n, "column", f.Column, "err", err)
			r.sum.ConversionErrors++
			r.reject(skiplog.ReasonConversionFailed, n, err.Error())
			v = nil
		}
		rec.Set(f.Column, v)
	}
	if short {
		r.sum.ShortRows++
	}
	return rec
}

// writeBatches writes recs as [k·B, min((k+1)·B, N)) batches in order. Only
// cancellation stops it early.
func (r *run) writeBatches(recs []*ddl.Record) error {
	if r.progress != nil {
		r.progress.Start(r.job.Table.Name, len(recs))
		defer r.progress.Finish()
	}

	for from := 0; from < len(recs); from += r.batchSize {
		to := min(from+r.batchSize, len(recs))
		batch := recs[from:to]
		r.sum.Batches++

		err := r.repo.Exec(r.ctx, r.job.Table.InsertSQL(batch))
		if err == nil {
			r.sum.Inserted += len(batch)
			r.log.Info("batch inserted", "from", from, "to", to-1)
		} else {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.sum.FailedBatches++
			r.log.Error("batch insert failed, inserting rows one by one",
				"from", from, "to", to-1, "err", err)
			if err := r.fallback(from, batch); err != nil {
				return err
			}
		}

		if r.progress != nil {
			r.progress.Add(len(batch))
		}
	}
	return nil
}

func (r *run) fallback(from int, batch []*ddl.Record) error {
	for i := range batch {
		err := r.repo.Exec(r.ctx, r.job.Table.InsertSQL(batch[i:i+1]))
		if err == nil {
			r.sum.Inserted++
			r.sum.FallbackInserted++
			continue
		}
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.sum.FallbackFailed++
		r.log.Error("row insert failed", "row", from+i, "err", err)
		r.reject(skiplog.ReasonInsertFailed, from+i, err.Error())
	}
	return nil
}

func (r *run) reject(reason string, index int, detail string) {
	if r.rejects != nil {
		r.rejects.Add(r.job.Table.Name, reason, index, detail)
	}
}

func (r *run) verify() error {
	n, err := r.repo.QueryInt(r.ctx, r.job.Table.CountSQL())
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	r.sum.Count = n
	r.sum.Verified = true
	r.log.Info("row count verified", "count", n, "inserted", r.sum.Inserted)
	return nil
}

// IsLoadError reports whether err is, or wraps, a *LoadError and returns it.
func IsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
