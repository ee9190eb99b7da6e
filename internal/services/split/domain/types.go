package domain

import (
	"time"

	"chronosplit/internal/core/tree"
)

// Input names one run's archive and destination
type Input struct {
	Path   string
	OutDir string
}

// Decoded is a recovered archive document plus how it was recovered
type Decoded struct {
	Doc            tree.Value
	Encoding       string
	Detected       string
	PrefixStripped bool
	RawScan        bool
	Bytes          int
}

// Unit is one output file's content; Content is UTF-8
type Unit struct {
	Period  string
	Part    int
	Ext     string
	Content []byte
}

// Written describes a persisted unit
type Written struct {
	Path  string
	Bytes int
	Lossy bool
}

// Summary is what a run did
type Summary struct {
	RunID  string
	Input  string
	OutDir string
	DryRun bool

	// decode
	Encoding       string
	Detected       string
	PrefixStripped bool
	RawScan        bool
	InputBytes     int

	// schema
	TimestampPath string
	Records       int // located, after unwrapping
	Unwrapped     int // dropped for lacking the wrapper key

	// grouping
	Missing     int
	Unparseable int
	Grouped     int
	Periods     []string

	// output
	Batches       int
	Forced        int
	Files         []string
	BytesWritten  int64
	Lossy         int
	WriteFailures int

	Elapsed time.Duration
}

// Empty reports a run that found a record array with nothing in it
func (s Summary) Empty() bool { return s.Records == 0 }

// Dropped counts every located record that reached no output unit
func (s Summary) Dropped() int { return s.Missing + s.Unparseable }
