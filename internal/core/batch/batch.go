// Package batch packs an ordered record sequence into size-bounded batches
//
// Packing is greedy, single pass and never reorders: a record that would push the
// current batch past the budget closes it and opens the next one. A record that
// cannot fit even alone is emitted by itself and flagged Forced.
// Sizes are tracked incrementally through a Sizer and are byte-exact
package batch

import (
	"chronosplit/internal/core/tree"
	perr "chronosplit/internal/platform/errors"
)

// Batch is one output unit's worth of consecutive records
type Batch struct {
	Records []tree.Value
	Size    int  // exact encoded size under the Sizer that built it
	Forced  bool // a single record larger than the budget
}

// Batcher packs records under MaxBytes
type Batcher struct {
	maxBytes int
	sizer    Sizer
}

// New validates the budget and returns a Batcher
func New(maxBytes int, s Sizer) (*Batcher, error) {
	if maxBytes <= 0 {
		return nil, perr.WithField(perr.InvalidArgf("batch: budget must be positive, got %d", maxBytes), "max_size")
	}
	if s == nil {
		return nil, perr.InvalidArgf("batch: nil sizer")
	}
	return &Batcher{maxBytes: maxBytes, sizer: s}, nil
}

// MaxBytes returns the budget
func (b *Batcher) MaxBytes() int { return b.maxBytes }

// Sizer returns the format accounting in use
func (b *Batcher) Sizer() Sizer { return b.sizer }

// Each streams batches to fn in order. An error from fn stops packing and is returned
func (b *Batcher) Each(records []tree.Value, fn func(Batch) error) error {
	var (
		cur     []tree.Value
		size    = b.sizer.Empty()
		present int
	)
	reset := func() {
		cur = nil
		size = b.sizer.Empty()
		present = 0
	}
	// grow is the size after adding a record of n bytes to a batch at (sz, pres)
	grow := func(sz, pres, n int, ok bool) int {
		if !ok {
			return sz
		}
		if pres > 0 {
			sz += b.sizer.Sep()
		}
		return sz + n
	}

	for _, rec := range records {
		n, ok := b.sizer.Measure(rec)
		next := grow(size, present, n, ok)

		if next > b.maxBytes && len(cur) > 0 {
			if err := fn(Batch{Records: cur, Size: size}); err != nil {
				return err
			}
			reset()
			next = grow(size, present, n, ok)
		}
		if next > b.maxBytes {
			if err := fn(Batch{Records: []tree.Value{rec}, Size: next, Forced: true}); err != nil {
				return err
			}
			continue
		}

		cur = append(cur, rec)
		size = next
		if ok {
			present++
		}
	}
	if len(cur) > 0 {
		return fn(Batch{Records: cur, Size: size})
	}
	return nil
}

// Split collects every batch
func (b *Batcher) Split(records []tree.Value) ([]Batch, error) {
	var out []Batch
	err := b.Each(records, func(bt Batch) error {
		out = append(out, bt)
		return nil
	})
	return out, err
}
