// Package importer loads the exam room and student files, in that order.
//
// Students reference rooms through a composite foreign key, so the room load
// must finish before any student DDL or DML runs. A failed room load ends the
// run.
package importer

import (
	"context"
	"log/slog"

	"examimport/internal/loader"
	"examimport/internal/logging"
)

// Loader is the part of *loader.Loader the importer needs.
type Loader interface {
	Load(ctx context.Context, job loader.Job) (loader.Summary, error)
}

// Option configures an Importer.
type Option func(*Importer)

// WithTypes rewrites column types for the target dialect.
func WithTypes(m TypeMapper) Option {
	return func(im *Importer) { im.types = m }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(im *Importer) {
		if lg != nil {
			im.logger = lg
		}
	}
}

// Importer runs the two loads.
type Importer struct {
	loader Loader
	types  TypeMapper
	logger *slog.Logger
}

// New returns an Importer that loads through l.
func New(l Loader, opts ...Option) *Importer {
	im := &Importer{loader: l, logger: logging.Discard()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Jobs returns the room and student jobs for the given paths. Rooms have no
// header row; students do.
func (im *Importer) Jobs(roomPath, studentPath string) (rooms, students loader.Job) {
	rooms = loader.Job{
		Path:       roomPath,
		Table:      RoomTable(im.types),
		HasHeader:  false,
		Mapping:    RoomMapping(),
		Converters: RoomConverters(),
	}
	students = loader.Job{
		Path:       studentPath,
		Table:      StudentTable(im.types),
		HasHeader:  true,
		Mapping:    StudentMapping(),
		Converters: StudentConverters(),
	}
	return rooms, students
}

// Run loads roomPath then studentPath. It returns the summaries of the loads
// that ran, including a failed one, and the first fatal error.
func (im *Importer) Run(ctx context.Context, roomPath, studentPath string) ([]loader.Summary, error) {
	rooms, students := im.Jobs(roomPath, studentPath)

	var out []loader.Summary
	for _, job := range []loader.Job{rooms, students} {
		im.logger.Info("loading", "table", job.Table.Name, "path", job.Path)
		sum, err := im.loader.Load(ctx, job)
		out = append(out, sum)
		if err != nil {
			return out, err
		}
		im.logger.Info("loaded",
			"table", sum.Table,
			"rows", sum.RowsRead,
			"inserted", sum.Inserted,
			"count", sum.Count,
			"duration", sum.Duration,
		)
	}
	return out, nil
}
