// Package locate finds the record array inside an archive document and the
// field that carries each record's timestamp
package locate

import (
	"context"

	"chronosplit/internal/core/tree"
	perr "chronosplit/internal/platform/errors"
	"chronosplit/internal/platform/logger"
	pstr "chronosplit/internal/platform/strings"
)

// Options names the keys the locator looks for. Empty fields take the defaults
type Options struct {
	// WrapperKey unwraps array elements shaped like {"tweet": {...}}
	WrapperKey string
	// ArrayKeys are tried in order on an object document
	ArrayKeys []string
	// ContainerKey is the nested object searched for ArrayKeys when the top level has none
	ContainerKey string
	// TimestampKeys are tried in priority order on the first record
	TimestampKeys []string
}

// DefaultOptions match the shapes produced by the common export tools
func DefaultOptions() Options {
	return Options{
		WrapperKey:    "tweet",
		ArrayKeys:     []string{"tweet", "tweets", "data"},
		ContainerKey:  "data",
		TimestampKeys: []string{"created_at", "timestamp", "time", "date"},
	}
}

// Result is what Locate found
type Result struct {
	Records []tree.Value
	Path    tree.Path // empty when Records is empty
	Dropped int       // elements without the wrapper key once unwrapping was chosen
}

// Empty reports a document whose record array has no elements
func (r Result) Empty() bool { return len(r.Records) == 0 }

// Locator discovers records and the timestamp path
type Locator struct {
	opt Options
	log *logger.Logger
}

// Option configures a Locator
type Option func(*Locator)

// WithLogger sets the logger; Locate adds the run fields from its ctx
func WithLogger(l *logger.Logger) Option {
	return func(lc *Locator) {
		if l != nil {
			lc.log = l
		}
	}
}

// New builds a Locator; zero-valued options fall back to DefaultOptions
func New(opt Options, opts ...Option) *Locator {
	def := DefaultOptions()
	if opt.WrapperKey == "" {
		opt.WrapperKey = def.WrapperKey
	}
	if opt.ContainerKey == "" {
		opt.ContainerKey = def.ContainerKey
	}
	opt.ArrayKeys = pstr.Dedupe(pstr.IfEmpty(opt.ArrayKeys, def.ArrayKeys), same)
	opt.TimestampKeys = pstr.Dedupe(pstr.IfEmpty(opt.TimestampKeys, def.TimestampKeys), same)
	l := &Locator{opt: opt}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		l.log = logger.Named("locate")
	}
	return l
}

// keys are case-sensitive in JSON
func same(a, b string) bool { return a == b }

// Options returns the effective options
func (l *Locator) Options() Options { return l.opt }

// Locate runs Records then TimestampPath on the first record
func (l *Locator) Locate(ctx context.Context, doc tree.Value) (Result, error) {
	r := l.forRun(ctx)
	recs, dropped, err := r.records(doc)
	if err != nil {
		return Result{}, err
	}
	res := Result{Records: recs, Dropped: dropped}
	if res.Empty() {
		r.log.Info().Msg("locate: record array is empty")
		return res, nil
	}
	p, err := r.TimestampPath(recs[0])
	if err != nil {
		return Result{}, err
	}
	res.Path = p
	r.log.Info().Int("records", len(recs)).Int("dropped", dropped).Str("timestamp_path", p.String()).
		Msg("locate: schema resolved")
	return res, nil
}

// forRun is a copy of l whose logger carries the run fields of ctx
func (l *Locator) forRun(ctx context.Context) *Locator {
	r := *l
	r.log = logger.From(ctx, l.log)
	return &r
}

// Records returns the record sequence held by doc
func (l *Locator) Records(doc tree.Value) ([]tree.Value, error) {
	recs, _, err := l.records(doc)
	return recs, err
}

func (l *Locator) records(doc tree.Value) ([]tree.Value, int, error) {
	switch doc.Kind() {
	case tree.KindArray:
		recs, dropped := l.unwrap(doc.Elems())
		return recs, dropped, nil
	case tree.KindObject:
		if arr, key, ok := l.findArray(doc); ok {
			l.log.Debug().Str("key", key).Int("len", arr.Len()).Msg("locate: record array found")
			return arr.Elems(), 0, nil
		}
		if inner, ok := doc.Get(l.opt.ContainerKey); ok && inner.IsObject() {
			if arr, key, ok := l.findArray(inner); ok {
				l.log.Debug().Str("key", l.opt.ContainerKey+"."+key).Int("len", arr.Len()).
					Msg("locate: record array found")
				return arr.Elems(), 0, nil
			}
		}
	}
	return nil, 0, perr.WithOp(
		perr.SchemaNotFoundf("locate: no record array in %s document (tried %v)", doc.Kind(), l.opt.ArrayKeys),
		"locate.records",
	)
}

func (l *Locator) findArray(obj tree.Value) (tree.Value, string, bool) {
	for _, k := range l.opt.ArrayKeys {
		if v, ok := obj.Get(k); ok && v.IsArray() {
			return v, k, true
		}
	}
	return tree.Value{}, "", false
}

// unwrap strips the wrapper key from every element when the first element has it.
// Elements that lack it are dropped and counted
func (l *Locator) unwrap(elems []tree.Value) ([]tree.Value, int) {
	if len(elems) == 0 || !elems[0].Has(l.opt.WrapperKey) {
		return elems, 0
	}
	out := make([]tree.Value, 0, len(elems))
	dropped := 0
	for i, e := range elems {
		inner, ok := e.Get(l.opt.WrapperKey)
		if !ok {
			dropped++
			l.log.Warn().Int("index", i).Str("wrapper", l.opt.WrapperKey).Msg("locate: element without wrapper dropped")
			continue
		}
		out = append(out, inner)
	}
	return out, dropped
}

// TimestampPath finds the field carrying the record time.
// Direct keys are checked in priority order, then nested containers depth-first
// (objects in member order, arrays through their first element only).
// A candidate key whose value is itself a container is descended into, not matched
func (l *Locator) TimestampPath(first tree.Value) (tree.Path, error) {
	for _, k := range l.opt.TimestampKeys {
		if v, ok := first.Get(k); ok && isScalar(v) {
			return tree.KeyPath(k), nil
		}
	}
	if p, ok := l.search(first, nil, true); ok {
		l.log.Debug().Str("path", p.String()).Msg("locate: nested timestamp field")
		return p, nil
	}
	return nil, perr.WithOp(
		perr.TimestampFieldNotFoundf("locate: first record has none of %v at any depth", l.opt.TimestampKeys),
		"locate.timestamp",
	)
}

// search walks v depth-first. At the top level direct matches were already rejected
func (l *Locator) search(v tree.Value, at tree.Path, top bool) (tree.Path, bool) {
	switch v.Kind() {
	case tree.KindObject:
		for _, m := range v.Members() {
			here := at.Child(tree.Key(m.Key))
			if !top && isScalar(m.Value) && l.isTimestampKey(m.Key) {
				return here, true
			}
			if p, ok := l.search(m.Value, here, false); ok {
				return p, true
			}
		}
	case tree.KindArray:
		if e, ok := v.Index(0); ok {
			return l.search(e, at.Child(tree.Idx(0)), false)
		}
	}
	return nil, false
}

func (l *Locator) isTimestampKey(k string) bool {
	for _, c := range l.opt.TimestampKeys {
		if c == k {
			return true
		}
	}
	return false
}

func isScalar(v tree.Value) bool { return !v.IsObject() && !v.IsArray() }
