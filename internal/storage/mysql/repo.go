// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 3306

// Config holds MySQL connection settings. DSN, when set, wins over the
// discrete fields.
type Config struct {
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	Charset  string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// DSN returns the driver DSN for cfg. A verbatim DSN is returned unchanged;
// otherwise one is built over TCP with parseTime enabled and the local time
// zone, so DATETIME columns scan into time.Time.
func DSN(cfg Config) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	mc := gomysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.Local
	if cfg.Charset != "" {
		mc.Params = map[string]string{"charset": cfg.Charset}
	}
	return mc.FormatDSN()
}

// NewRepository opens a MySQL connection pool and returns a Repository plus a
// Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn := DSN(cfg)
	if _, err := gomysql.ParseDSN(dsn); err != nil {
		return nil, nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// Exec executes a statement that returns no rows.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// QueryInt runs a single-cell integer query.
func (r *Repository) QueryInt(ctx context.Context, sql string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, sql).Scan(&n); err != nil {
		return 0, fmt.Errorf("mysql: query: %w", err)
	}
	return n, nil
}
