// Package timeline parses record timestamps, orders records chronologically
// and buckets them into period keys
package timeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"chronosplit/internal/core/tree"
	perr "chronosplit/internal/platform/errors"
	"chronosplit/internal/platform/logger"
	pstr "chronosplit/internal/platform/strings"
)

const logValueMax = 120 // offending values are cut to this many bytes in warnings

// Granularity selects the period size
type Granularity string

const (
	// Month buckets by YYYY-MM
	Month Granularity = "month"
	// Year buckets by YYYY
	Year Granularity = "year"
	// All puts every record in one bucket
	All Granularity = "all"
)

// AllKey is the single period key used by the All granularity
const AllKey PeriodKey = "all"

// ParseGranularity accepts month, year or all (case-insensitive)
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Month, Year, All:
		return g, nil
	case "":
		return Month, nil
	default:
		return "", perr.WithField(perr.InvalidArgf("timeline: unknown granularity %q", s), "group_by")
	}
}

// PeriodKey labels a group. Lexicographic order is chronological order
type PeriodKey string

// Key derives the period key of t, using t's own wall clock
func (g Granularity) Key(t time.Time) PeriodKey {
	switch g {
	case Year:
		return PeriodKey(t.Format("2006"))
	case All:
		return AllKey
	default:
		return PeriodKey(t.Format("2006-01"))
	}
}

// Stats counts what happened to the input records
type Stats struct {
	Total       int
	Grouped     int
	Missing     int // timestamp path absent or not a string
	Unparseable int // no strategy matched
}

// Dropped is Missing plus Unparseable
func (s Stats) Dropped() int { return s.Missing + s.Unparseable }

// Groups holds sorted records bucketed by period
type Groups struct {
	keys    []PeriodKey
	buckets map[PeriodKey][]tree.Value
}

// Keys returns the period keys in ascending order
func (g Groups) Keys() []PeriodKey {
	out := make([]PeriodKey, len(g.keys))
	copy(out, g.keys)
	return out
}

// Records returns the chronologically ordered records of one period
func (g Groups) Records(k PeriodKey) []tree.Value { return g.buckets[k] }

// Len is the number of periods
func (g Groups) Len() int { return len(g.keys) }

// Grouper applies the strategy cascade and buckets records
type Grouper struct {
	strategies []Strategy
	gran       Granularity
	log        *logger.Logger
}

// New builds a Grouper. With no strategies the built-in cascade is used
func New(gran Granularity, strategies ...Strategy) *Grouper {
	if gran == "" {
		gran = Month
	}
	return &Grouper{
		strategies: pstr.IfEmpty(strategies, DefaultStrategies()),
		gran:       gran,
		log:        logger.Named("timeline"),
	}
}

// WithLogger replaces the logger; Group adds the run fields from its ctx
func (g *Grouper) WithLogger(l *logger.Logger) *Grouper {
	if l != nil {
		g.log = l
	}
	return g
}

// Granularity returns the configured period size
func (g *Grouper) Granularity() Granularity { return g.gran }

// Parse runs the strategy cascade over one timestamp string
func (g *Grouper) Parse(s string) (time.Time, bool) { return parseFirst(g.strategies, s) }

type stamped struct {
	t   time.Time
	rec tree.Value
}

// Group parses each record's timestamp at path once, drops records it cannot
// place, stable-sorts the rest by instant and buckets them.
// Records with equal instants keep their input order
func (g *Grouper) Group(ctx context.Context, records []tree.Value, path tree.Path) (Groups, Stats) {
	log := logger.From(ctx, g.log)
	st := Stats{Total: len(records)}
	ok := make([]stamped, 0, len(records))

	for i, rec := range records {
		v, found := path.Resolve(rec)
		s, isStr := v.Str()
		if !found || !isStr {
			st.Missing++
			log.Warn().Int("index", i).Str("path", path.String()).Str("kind", v.Kind().String()).
				Msg("timeline: timestamp missing; record skipped")
			continue
		}
		t, parsed := g.Parse(s)
		if !parsed {
			st.Unparseable++
			err := perr.WithField(perr.UnparseableTimestampf("timeline: no format matched"), path.String())
			log.Warn().Err(err).Int("index", i).Str("value", pstr.Truncate(s, logValueMax)).
				Msg("timeline: timestamp unparseable; record skipped")
			continue
		}
		ok = append(ok, stamped{t: t, rec: rec})
	}

	sort.SliceStable(ok, func(i, j int) bool { return ok[i].t.Before(ok[j].t) })

	out := Groups{buckets: make(map[PeriodKey][]tree.Value)}
	for _, s := range ok {
		k := g.gran.Key(s.t)
		if _, seen := out.buckets[k]; !seen {
			out.keys = append(out.keys, k)
		}
		out.buckets[k] = append(out.buckets[k], s.rec)
	}
	// wall-clock keys can disagree with instant order across offsets
	sort.Slice(out.keys, func(i, j int) bool { return out.keys[i] < out.keys[j] })
	st.Grouped = len(ok)

	log.Info().Int("records", st.Total).Int("grouped", st.Grouped).Int("missing", st.Missing).
		Int("unparseable", st.Unparseable).Int("periods", out.Len()).Str("granularity", string(g.gran)).
		Msg("timeline: grouped")
	return out, st
}
