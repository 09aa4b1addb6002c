// Package skiplog writes the rows a load could not store as given to a CSV
// file, one line per problem, and keeps a per-reason tally.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Reasons recorded by the loader.
const (
	ReasonShortRow         = "short_row"
	ReasonConversionFailed = "conversion_failed"
	ReasonInsertFailed     = "insert_failed"
)

// Header is the first line of every skip log.
var Header = []string{"table", "reason", "index", "detail"}

// Log is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	f       *os.File
	w       *csv.Writer
	reasons map[string]int
}

// Create makes path (and its parent directories) and writes the header.
func Create(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("skiplog: create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("skiplog: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("skiplog: write header: %w", err)
	}
	return &Log{f: f, w: w, reasons: make(map[string]int)}, nil
}

// Add records one problem. index is the 1-based data row for read problems
// and the 0-based record index for insert problems.
func (l *Log) Add(table, reason string, index int, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reasons[reason]++
	_ = l.w.Write([]string{table, reason, strconv.Itoa(index), detail})
}

// Counts returns a copy of the per-reason tally.
func (l *Log) Counts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.reasons)
}

// Close flushes and closes the file. It reports the first write error.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	werr := l.w.Error()
	cerr := l.f.Close()
	if werr != nil {
		return fmt.Errorf("skiplog: write: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("skiplog: close: %w", cerr)
	}
	return nil
}
