// Package progress renders a terminal progress bar per loaded table.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker tracks records written for one table at a time.
type Tracker struct {
	w         io.Writer
	bar       *progressbar.ProgressBar
	label     string
	current   atomic.Int64
	startTime time.Time
}

// New creates a tracker that draws on w (stderr when nil).
func New(w io.Writer) *Tracker {
	if w == nil {
		w = os.Stderr
	}
	return &Tracker{w: w}
}

// Start resets the tracker for a new table with total records to write.
func (t *Tracker) Start(label string, total int) {
	t.label = label
	t.current.Store(0)
	t.startTime = time.Now()
	t.bar = progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetWriter(t.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Add advances the bar by n records.
func (t *Tracker) Add(n int) {
	t.current.Add(int64(n))
	if t.bar != nil {
		_ = t.bar.Add(n)
	}
}

// Current returns the number of records handled since Start.
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Finish completes the bar and prints a one-line throughput summary.
func (t *Tracker) Finish() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	t.bar = nil

	elapsed := time.Since(t.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(t.current.Load()) / elapsed.Seconds()
	}
	fmt.Fprintf(t.w, "\n%s: %d rows in %s (%.0f rows/sec)\n",
		t.label, t.current.Load(), elapsed.Round(time.Millisecond), rate)
}
