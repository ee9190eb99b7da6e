package archive

import (
	"context"
	"os"

	"chronosplit/internal/core/tree"
	perr "chronosplit/internal/platform/errors"
	"chronosplit/internal/platform/logger"
	pstr "chronosplit/internal/platform/strings"
)

const sampleErrMax = 200 // max bytes of a parse error echoed into logs

// readFile is a seam for tests
var readFile = os.ReadFile

// Report describes how a document was recovered
type Report struct {
	Encoding       string // charset that produced the parsed document
	Detected       string // detector guess, empty when none or below threshold
	Confidence     int    // detector confidence for Detected
	PrefixStripped bool   // a script assignment was cut away
	RawScan        bool   // recovered by the raw [ ... ] scan fallback
	Bytes          int    // input size
}

// Decoder runs the decode cascade
type Decoder struct {
	detector Detector
	charsets []Charset
	log      *logger.Logger
}

// Option configures a Decoder
type Option func(*Decoder)

// WithDetector injects a statistical charset detector; nil disables detection
func WithDetector(d Detector) Option {
	return func(dc *Decoder) { dc.detector = d }
}

// WithCharsets replaces the fixed cascade
func WithCharsets(cs ...Charset) Option {
	return func(dc *Decoder) {
		if len(cs) > 0 {
			dc.charsets = cs
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(dc *Decoder) {
		if l != nil {
			dc.log = l
		}
	}
}

// New builds a Decoder. Without WithDetector no statistical guess is attempted
func New(opts ...Option) *Decoder {
	d := &Decoder{charsets: DefaultCharsets()}
	for _, o := range opts {
		o(d)
	}
	if d.log == nil {
		d.log = logger.Named("archive")
	}
	return d
}

// Decode reads path and recovers its document
func (d *Decoder) Decode(ctx context.Context, path string) (tree.Value, Report, error) {
	if err := ctx.Err(); err != nil {
		return tree.Value{}, Report{}, perr.Canceled(err)
	}
	data, err := readFile(path)
	if err != nil {
		return tree.Value{}, Report{}, perr.FromFS(err, perr.ErrorCodeDecode, "archive.read", path)
	}
	v, rep, err := d.forRun(ctx).DecodeBytes(path, data)
	if err != nil {
		return tree.Value{}, rep, perr.WithField(err, path)
	}
	return v, rep, nil
}

// forRun is a copy of d logging with the run fields of ctx
func (d *Decoder) forRun(ctx context.Context) *Decoder {
	r := *d
	r.log = logger.From(ctx, d.log)
	return &r
}

// DecodeBytes runs the cascade over data. name only drives script-extension detection and logging
func (d *Decoder) DecodeBytes(name string, data []byte) (tree.Value, Report, error) {
	rep := Report{Bytes: len(data)}
	script := IsScript(name)

	cands := d.candidates(data, &rep)
	for _, cs := range cands {
		text, err := cs.DecodeStrict(data)
		if err != nil {
			d.log.Debug().Str("charset", cs.Name).Err(err).Msg("archive: candidate rejected")
			continue
		}
		stripped := false
		if script {
			text, stripped = StripAssignment(text)
		}
		v, err := tree.ParseString(text)
		if err != nil {
			d.log.Debug().Str("charset", cs.Name).Bool("prefix_stripped", stripped).
				Str("parse_err", pstr.Truncate(err.Error(), sampleErrMax)).Msg("archive: decoded but not parseable")
			continue
		}
		rep.Encoding = cs.Name
		rep.PrefixStripped = stripped
		d.log.Info().Str("charset", cs.Name).Bool("prefix_stripped", stripped).Int("bytes", len(data)).
			Msg("archive: decoded")
		return v, rep, nil
	}

	d.log.Warn().Str("name", name).Msg("archive: cascade exhausted; scanning raw bytes for an array")
	raw := stripBOM(data)
	for _, cs := range d.charsets {
		src := raw
		if cs.bom {
			if !cs.applicable(data) {
				continue
			}
			src = data
		}
		text, err := cs.DecodeLossy(src)
		if err != nil {
			continue
		}
		span, ok := bracketSpan(text)
		if !ok {
			continue
		}
		v, err := tree.ParseString(span)
		if err != nil {
			d.log.Debug().Str("charset", cs.Name).Str("parse_err", pstr.Truncate(err.Error(), sampleErrMax)).
				Msg("archive: raw scan not parseable")
			continue
		}
		rep.Encoding = cs.Name
		rep.RawScan = true
		d.log.Warn().Str("charset", cs.Name).Msg("archive: recovered by raw scan")
		return v, rep, nil
	}

	return tree.Value{}, rep, perr.WithOp(
		perr.Decodef("archive: no encoding, unwrap or parse combination succeeded for %s", name),
		"archive.decode",
	)
}

// candidates puts the detector guess, when usable, ahead of the fixed cascade without repeating names
func (d *Decoder) candidates(data []byte, rep *Report) []Charset {
	out := make([]Charset, 0, len(d.charsets)+1)
	if d.detector != nil {
		name, conf, ok := d.detector.Detect(data)
		switch {
		case !ok:
			d.log.Debug().Str("guess", name).Int("confidence", conf).Msg("archive: detector guess ignored")
		default:
			cs, err := LookupCharset(name)
			if err != nil {
				d.log.Debug().Str("guess", name).Err(err).Msg("archive: detector guess unknown")
				break
			}
			rep.Detected = cs.Name
			rep.Confidence = conf
			out = append(out, cs)
		}
	}
	for _, cs := range d.charsets {
		dup := false
		for _, o := range out {
			if pstr.EqualFold(o.Name, cs.Name) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, cs)
		}
	}
	return out
}
