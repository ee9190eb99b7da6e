// Package fsout persists output units as files in one directory
//
// Files are created exclusively and never reopened. A name that is taken gets a
// numeric suffix, so an existing file is never overwritten
package fsout

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	perr "chronosplit/internal/platform/errors"
	"chronosplit/internal/platform/logger"

	"github.com/dustin/go-humanize"
)

const maxDedupe = 10000 // suffix attempts before giving up on a name

// createFile is a seam for tests
var createFile = func(name string) (*os.File, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// Unit is one file's worth of output
type Unit struct {
	Period  string
	Part    int
	Ext     string
	Content []byte // UTF-8
}

// BaseName is {period}_part_{n}
func (u Unit) BaseName() string { return fmt.Sprintf("%s_part_%d", u.Period, u.Part) }

// Result describes a persisted unit
type Result struct {
	Path  string
	Bytes int  // bytes on disk
	Lossy bool // content went through the replacement retry
}

// Writer writes units under Dir
type Writer struct {
	dir string
	tgt target
	log *logger.Logger
}

// Option configures a Writer
type Option func(*Writer)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// New builds a Writer for dir using the named output encoding ("" is UTF-8)
func New(dir, encodingName string, opts ...Option) (*Writer, error) {
	tgt, err := resolveEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	w := &Writer{dir: dir, tgt: tgt}
	for _, o := range opts {
		o(w)
	}
	if w.log == nil {
		w.log = logger.Named("fsout")
	}
	return w, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string { return w.dir }

// Encoding returns the canonical output encoding name
func (w *Writer) Encoding() string { return w.tgt.name }

// Write encodes and persists u. Errors carry ErrorCodeWriteEncoding, ErrorCodeWriteIO or ErrorCodeCanceled
func (w *Writer) Write(ctx context.Context, u Unit) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, perr.Canceled(err)
	}
	log := logger.From(ctx, w.log)
	data, lossy, err := w.encode(log, u)
	if err != nil {
		return Result{}, perr.WithOp(err, "fsout.encode")
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Result{}, ioErr(err, "fsout.mkdir", w.dir)
	}

	f, path, err := w.create(log, u)
	if err != nil {
		return Result{}, err
	}

	bw := bufio.NewWriter(f)
	_, werr := bw.Write(data)
	if werr == nil {
		werr = bw.Flush()
	}
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		// the unit is lost; leave no truncated file behind
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", path).Msg("fsout: could not remove partial file")
		}
		return Result{}, ioErr(werr, "fsout.write", path)
	}

	log.Info().Str("path", path).Str("size", humanize.Bytes(uint64(len(data)))).
		Str("encoding", w.tgt.name).Bool("lossy", lossy).Msg("fsout: unit written")
	return Result{Path: path, Bytes: len(data), Lossy: lossy}, nil
}

// encode tries the strict encoder once, then the replacement retry
func (w *Writer) encode(log *logger.Logger, u Unit) ([]byte, bool, error) {
	data, err := w.tgt.strict(u.Content)
	if err == nil {
		return data, false, nil
	}
	log.Warn().Err(err).Str("unit", u.BaseName()).Str("encoding", w.tgt.name).
		Msg("fsout: content not encodable; retrying with replacement")
	data, err = w.tgt.lossy(u.Content)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// create claims the first free name for u with O_EXCL
func (w *Writer) create(log *logger.Logger, u Unit) (*os.File, string, error) {
	base := u.BaseName()
	for k := 0; k < maxDedupe; k++ {
		name := base
		if k > 0 {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		path := filepath.Join(w.dir, name+"."+u.Ext)
		f, err := createFile(path)
		if err == nil {
			if k > 0 {
				log.Warn().Str("wanted", base+"."+u.Ext).Str("path", path).Msg("fsout: name taken; wrote suffixed file")
			}
			return f, path, nil
		}
		if os.IsExist(err) {
			continue
		}
		return nil, "", ioErr(err, "fsout.create", path)
	}
	return nil, "", perr.WithOp(perr.Newf(perr.ErrorCodeWriteIO, "fsout: no free name for %s after %d attempts", base, maxDedupe), "fsout.create")
}

func ioErr(err error, op, path string) error {
	e := perr.Wrapf(err, perr.ErrorCodeWriteIO, "%s %s", op, path)
	return perr.WithField(perr.WithOp(e, op), path)
}
