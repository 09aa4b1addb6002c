// Package storage contains the storage-agnostic contract used by the loader
// and a small factory that backend packages register themselves with.
//
// The contract is deliberately narrow: the loader renders complete SQL text
// (DDL, multi-row INSERT, COUNT) and a backend only has to execute it.
package storage

import "context"

// Repository executes literal SQL against one relational store.
type Repository interface {
	// Exec runs a statement that returns no rows (CREATE TABLE, INSERT).
	Exec(ctx context.Context, sql string) error

	// QueryInt runs a query whose result is a single integer cell, such as
	// SELECT COUNT(*).
	QueryInt(ctx context.Context, sql string) (int64, error)

	// Close releases the connection pool.
	Close()
}

// Config selects a backend and carries its connection settings. When DSN is
// set it is used verbatim; otherwise backends build one from the discrete
// fields.
type Config struct {
	Kind string

	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	Charset  string
}
