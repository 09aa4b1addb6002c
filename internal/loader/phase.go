package loader

import (
	"fmt"
	"time"
)

// Phase is a step of a single load.
//
//	CreatingTable → ReadingCSV → Empty → Done
//	                           → WritingBatches → Verifying → Done
//
// A fatal error in any step ends the load in Failed.
type Phase int

const (
	PhaseCreatingTable Phase = iota
	PhaseReadingCSV
	PhaseEmpty
	PhaseWritingBatches
	PhaseVerifying
	PhaseDone
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseCreatingTable:  "creating_table",
	PhaseReadingCSV:     "reading_csv",
	PhaseEmpty:          "empty",
	PhaseWritingBatches: "writing_batches",
	PhaseVerifying:      "verifying",
	PhaseDone:           "done",
	PhaseFailed:         "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// LoadError is returned for every fatal load failure. Phase is the step that
// was running when the failure happened.
type LoadError struct {
	Table string
	Phase Phase
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s failed while %s: %v", e.Table, e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Summary describes one finished load, successful or not.
type Summary struct {
	Table string
	Path  string

	// Phase is PhaseDone or PhaseFailed.
	Phase Phase

	// Empty is set when no records survived reading and nothing was written.
	Empty bool

	RowsRead         int
	RecordsKept      int
	ShortRows        int
	ConversionErrors int

	// Inserted counts records written, by whole batches or by the
	// per-record fallback.
	Inserted         int
	Batches          int
	FailedBatches    int
	FallbackInserted int
	FallbackFailed   int

	// Count is the verified row count of the table; valid when Verified.
	Count    int64
	Verified bool

	// Digest is the xxh3 hash of the input file; valid when DigestOK.
	Digest   uint64
	DigestOK bool

	Duration time.Duration
}
