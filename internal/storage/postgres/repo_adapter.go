package postgres

import (
	"context"

	"examimport/internal/storage"
)

// newRepository is swapped out by tests that must not dial a server.
var newRepository = NewRepository

// wrappedRepo pairs a Repository with the pool shutdown NewRepository returned.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" backend. The dialect has no DATETIME type,
// so table definitions written with it are rewritten to TIMESTAMP.
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:      cfg.DSN,
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterTypes("postgres", map[string]string{
		"DATETIME": "TIMESTAMP",
	})
}
