// Package service runs one archive through decode, locate, group, batch and write
package service

import (
	"context"
	"time"

	"chronosplit/internal/core/batch"
	"chronosplit/internal/core/timeline"
	"chronosplit/internal/core/tree"
	perr "chronosplit/internal/platform/errors"
	"chronosplit/internal/platform/logger"
	dom "chronosplit/internal/services/split/domain"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Config for the split service
type Config struct {
	MaxBytes int
	Sizer    batch.Sizer // batch.JSONSizer or batch.TextSizer
	DryRun   bool
}

// Ports the service drives
type Ports struct {
	Decoder dom.DecoderPort
	Locator dom.LocatorPort
	Grouper dom.GrouperPort
	Writer  dom.WriterPort // may be nil when DryRun
}

// Service implements domain.RunnerPort
type Service struct {
	ports   Ports
	batcher *batch.Batcher
	cfg     Config

	newID func() string
	now   func() time.Time
}

// New validates cfg and wires the ports
func New(p Ports, cfg Config) (*Service, error) {
	if p.Decoder == nil || p.Locator == nil || p.Grouper == nil {
		return nil, perr.Internalf("split: decoder, locator and grouper ports are required")
	}
	if p.Writer == nil && !cfg.DryRun {
		return nil, perr.Internalf("split: writer port is required unless dry run")
	}
	if cfg.Sizer == nil {
		cfg.Sizer = batch.JSONSizer{}
	}
	b, err := batch.New(cfg.MaxBytes, cfg.Sizer)
	if err != nil {
		return nil, err
	}
	return &Service{ports: p, batcher: b, cfg: cfg, newID: uuid.NewString, now: time.Now}, nil
}

// Run implements domain.RunnerPort. Per-record and per-unit failures are counted in the
// Summary; everything else aborts the run and is returned
func (s *Service) Run(ctx context.Context, in dom.Input) (dom.Summary, error) {
	start := s.now()
	sum := dom.Summary{RunID: s.newID(), Input: in.Path, OutDir: in.OutDir, DryRun: s.cfg.DryRun}
	ctx = logger.WithRun(ctx, sum.RunID, in.Path)
	log := logger.NamedC(ctx, "split")

	dec, err := s.ports.Decoder.Decode(ctx, in.Path)
	if err != nil {
		return s.finish(sum, start), err
	}
	sum.Encoding, sum.Detected = dec.Encoding, dec.Detected
	sum.PrefixStripped, sum.RawScan, sum.InputBytes = dec.PrefixStripped, dec.RawScan, dec.Bytes

	loc, err := s.ports.Locator.Locate(ctx, dec.Doc)
	if err != nil {
		return s.finish(sum, start), err
	}
	sum.Records, sum.Unwrapped = len(loc.Records), loc.Dropped
	if loc.Empty() {
		log.Info().Msg("split: no records; nothing to write")
		return s.finish(sum, start), nil
	}
	sum.TimestampPath = loc.Path.String()

	groups, st := s.ports.Grouper.Group(ctx, loc.Records, loc.Path)
	sum.Missing, sum.Unparseable, sum.Grouped = st.Missing, st.Unparseable, st.Grouped

	keys := groups.Keys()
	for i, k := range keys {
		if err := ctx.Err(); err != nil {
			return s.finish(sum, start), perr.Canceled(err)
		}
		sum.Periods = append(sum.Periods, string(k))
		if err := s.period(ctx, &sum, k, groups.Records(k)); err != nil {
			return s.finish(sum, start), err
		}
		log.Info().Str("period", string(k)).Int("done", i+1).Int("total", len(keys)).Msg("split: period flushed")
	}

	sum = s.finish(sum, start)
	log.Info().Int("records", sum.Records).Int("grouped", sum.Grouped).Int("dropped", sum.Dropped()).
		Int("files", len(sum.Files)).Int("write_failures", sum.WriteFailures).
		Str("written", humanize.Bytes(uint64(sum.BytesWritten))).Msg("split: done")
	return sum, nil
}

// period batches one period's records and flushes every batch in part order
func (s *Service) period(ctx context.Context, sum *dom.Summary, key timeline.PeriodKey, recs []tree.Value) error {
	log := logger.NamedC(ctx, "split")
	part := 0
	return s.batcher.Each(recs, func(b batch.Batch) error {
		if err := ctx.Err(); err != nil {
			return perr.Canceled(err)
		}
		part++
		sum.Batches++
		if b.Forced {
			sum.Forced++
			log.Warn().Str("period", string(key)).Int("part", part).Str("size", humanize.Bytes(uint64(b.Size))).
				Str("budget", humanize.Bytes(uint64(s.cfg.MaxBytes))).Msg("split: single record exceeds budget; written alone")
		}
		if s.cfg.DryRun {
			log.Info().Str("period", string(key)).Int("part", part).Int("records", len(b.Records)).
				Int("bytes", b.Size).Msg("split: dry run; unit not written")
			return nil
		}

		u := dom.Unit{Period: string(key), Part: part, Ext: s.cfg.Sizer.Ext(), Content: s.cfg.Sizer.Encode(b.Records)}
		w, err := s.ports.Writer.Write(ctx, u)
		if err != nil {
			if perr.CodeOf(err).Fatal() {
				return err
			}
			sum.WriteFailures++
			log.Error().Err(err).Str("period", string(key)).Int("part", part).Int("records", len(b.Records)).
				Msg("split: unit lost; continuing")
			return nil
		}
		sum.Files = append(sum.Files, w.Path)
		sum.BytesWritten += int64(w.Bytes)
		if w.Lossy {
			sum.Lossy++
		}
		return nil
	})
}

func (s *Service) finish(sum dom.Summary, start time.Time) dom.Summary {
	sum.Elapsed = s.now().Sub(start)
	return sum
}
