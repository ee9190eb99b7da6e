// Package module wires the split service from options using modkit
package module

import (
	"chronosplit/internal/adapters/ingest/archive"
	"chronosplit/internal/adapters/output/fsout"
	"chronosplit/internal/core/batch"
	"chronosplit/internal/core/locate"
	"chronosplit/internal/core/normalize"
	"chronosplit/internal/core/timeline"
	"chronosplit/internal/modkit"
	"chronosplit/internal/services/split/domain"
	"chronosplit/internal/services/split/service"
)

// Ports exposed by the split module
type Ports struct {
	Runner domain.RunnerPort
}

// Overrides replaces individual collaborators; pass with modkit.WithPorts. Nil fields keep the defaults
type Overrides struct {
	Decoder domain.DecoderPort
	Locator domain.LocatorPort
	Grouper domain.GrouperPort
	Writer  domain.WriterPort
}

// Module implements modkit.Module for the split service
type Module struct {
	deps  modkit.Deps
	name  string
	opts  Options
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New validates opts, builds the collaborators for outDir and wires the service
func New(deps modkit.Deps, opts Options, outDir string, mopts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("split")}, mopts...)...)

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	gran, err := timeline.ParseGranularity(opts.GroupBy)
	if err != nil {
		return nil, err
	}
	strategies, err := timeline.Strategies(opts.TimeFormat)
	if err != nil {
		return nil, err
	}

	var ov Overrides
	if o, ok := b.Ports.(Overrides); ok {
		ov = o
	}

	p := service.Ports{
		Decoder: ov.Decoder,
		Locator: ov.Locator,
		Grouper: ov.Grouper,
		Writer:  ov.Writer,
	}
	if p.Decoder == nil {
		dopts := []archive.Option{archive.WithLogger(deps.Logger("archive"))}
		if opts.DetectCharset {
			dopts = append(dopts, archive.WithDetector(archive.NewChardetDetector()))
		}
		p.Decoder = decoderPort{d: archive.New(dopts...)}
	}
	if p.Locator == nil {
		p.Locator = locate.New(locate.Options{ArrayKeys: opts.ArrayKeys, TimestampKeys: opts.TimestampKeys},
			locate.WithLogger(deps.Logger("locate")))
	}
	if p.Grouper == nil {
		p.Grouper = timeline.New(gran, strategies...).WithLogger(deps.Logger("timeline"))
	}
	if p.Writer == nil && !opts.DryRun {
		w, err := fsout.New(outDir, opts.OutputEncoding, fsout.WithLogger(deps.Logger("fsout")))
		if err != nil {
			return nil, err
		}
		p.Writer = writerPort{w: w}
	}

	// budgets are measured in output bytes, so a dry run needs the encoding too
	size, err := fsout.EncodedLen(opts.OutputEncoding)
	if err != nil {
		return nil, err
	}
	var sizer batch.Sizer = batch.JSONSizer{Len: size}
	if opts.TextOnly {
		sizer = batch.TextSizer{R: normalize.New(normalize.Options{TextKeys: opts.TextKeys}), Len: size}
	}

	svc, err := service.New(p, service.Config{
		MaxBytes: int(opts.MaxSize),
		Sizer:    sizer,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		return nil, err
	}

	return &Module{deps: deps, name: b.Name, opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Options returns the validated options the module was built with
func (m *Module) Options() Options { return m.opts }
