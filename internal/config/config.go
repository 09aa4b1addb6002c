// Package config defines the import configuration and the layers it is read
// from. Precedence, lowest first:
//
//  1. Default()
//  2. a JSON or YAML file (LoadFile)
//  3. a .env file and the process environment (LoadDotEnv, ApplyEnv)
//  4. command-line flags, applied by the caller
//
// Example (YAML):
//
//	driver: mysql
//	host: db.internal
//	user: loader
//	database: exam
//	batch_size: 1000
//	rooms: /data/room.csv
//	students: /data/student.csv
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"examimport/internal/storage"
)

// Config holds every setting of one import run. All fields are plain values
// so a Config can be copied freely.
type Config struct {
	// Driver selects the storage backend: mysql, postgres or sqlite.
	Driver string `json:"driver" yaml:"driver"`

	// DSN is used verbatim when set. Otherwise the backend builds one from
	// the discrete fields below.
	DSN      string `json:"dsn" yaml:"dsn"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"` // 0 selects the driver's default port
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	Charset  string `json:"charset" yaml:"charset"`

	BatchSize int    `json:"batch_size" yaml:"batch_size"`
	Encoding  string `json:"encoding" yaml:"encoding"` // input text encoding; empty means UTF-8

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// MetricsBackend is none, pushgateway or datadog.
	MetricsBackend string `json:"metrics_backend" yaml:"metrics_backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`

	// Rooms and Students are the input file paths.
	Rooms    string `json:"rooms" yaml:"rooms"`
	Students string `json:"students" yaml:"students"`

	// Rejects, when set, is a CSV file listing every short row, rejected
	// value and record that failed to insert.
	Rejects string `json:"rejects" yaml:"rejects"`
}

// Defaults.
const (
	DefaultDriver    = "mysql"
	DefaultHost      = "localhost"
	DefaultUser      = "root"
	DefaultDatabase  = "exam"
	DefaultCharset   = "utf8mb4"
	DefaultBatchSize = 1000
	DefaultRooms     = "room.csv"
	DefaultStudents  = "student.csv"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Driver:         DefaultDriver,
		Host:           DefaultHost,
		User:           DefaultUser,
		Database:       DefaultDatabase,
		Charset:        DefaultCharset,
		BatchSize:      DefaultBatchSize,
		LogLevel:       "info",
		LogFormat:      "text",
		MetricsBackend: "none",
		Rooms:          DefaultRooms,
		Students:       DefaultStudents,
	}
}

// LoadFile decodes the file at path over cfg. Keys absent from the file keep
// their current value. The format follows the extension: .json, .yaml or .yml.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("config: %s: unsupported extension %q (want .json, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv adds the variables from a .env file to the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the environment variables read through getenv onto cfg.
// Empty values are ignored. A malformed number is an error naming the
// variable.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str(&cfg.Driver, "IMPORT_DRIVER")
	str(&cfg.DSN, "IMPORT_DSN", "DATABASE_URL")
	str(&cfg.Host, "DB_HOST")
	str(&cfg.User, "DB_USER")
	str(&cfg.Password, "DB_PASSWORD")
	str(&cfg.Database, "DB_NAME")
	str(&cfg.Charset, "DB_CHARSET")
	str(&cfg.Encoding, "IMPORT_ENCODING")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.LogFormat, "LOG_FORMAT")
	str(&cfg.MetricsBackend, "METRICS_BACKEND")
	str(&cfg.PushgatewayURL, "PUSHGATEWAY_URL")
	str(&cfg.DatadogAddr, "DATADOG_ADDR")
	str(&cfg.Rejects, "IMPORT_REJECTS")

	if err := num(&cfg.Port, "DB_PORT"); err != nil {
		return err
	}
	return num(&cfg.BatchSize, "IMPORT_BATCH_SIZE")
}

// Storage returns the storage settings of cfg.
func (c Config) Storage() storage.Config {
	return storage.Config{
		Kind:     c.Driver,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		Charset:  c.Charset,
	}
}
