// Package domain holds the split service's types and ports
package domain

import (
	"context"

	"chronosplit/internal/core/locate"
	"chronosplit/internal/core/timeline"
	"chronosplit/internal/core/tree"
)

// RunnerPort splits one archive
type RunnerPort interface {
	Run(ctx context.Context, in Input) (Summary, error)
}

// DecoderPort reads and recovers an archive document
type DecoderPort interface {
	Decode(ctx context.Context, path string) (Decoded, error)
}

// LocatorPort finds records and their timestamp field
type LocatorPort interface {
	Locate(ctx context.Context, doc tree.Value) (locate.Result, error)
}

// GrouperPort orders and buckets records by period
type GrouperPort interface {
	Group(ctx context.Context, records []tree.Value, path tree.Path) (timeline.Groups, timeline.Stats)
}

// WriterPort persists one output unit
type WriterPort interface {
	Write(ctx context.Context, u Unit) (Written, error)
}
