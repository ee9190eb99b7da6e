// Command chronosplit splits a social-media export archive into per-period files under a byte budget
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"chronosplit/internal/core/version"
	"chronosplit/internal/modkit"
	"chronosplit/internal/platform/config"
	perr "chronosplit/internal/platform/errors"
	"chronosplit/internal/platform/logger"
	"chronosplit/internal/services/split/domain"
	splitmod "chronosplit/internal/services/split/module"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

const usage = `usage: chronosplit [flags] <input> <output-dir> [max-size-MB]

Splits a tweet archive (JSON or window.YTD script) into chronological files,
one set per period, each at most max-size bytes.

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	set *pflag.FlagSet

	maxSize        string
	timeFormat     string
	textOnly       bool
	groupBy        string
	outputEncoding string
	detectCharset  bool
	dryRun         bool
	configPath     string
	envFile        string
	version        bool

	timestampKeys []string
	arrayKeys     []string
	textKeys      []string
}

func newFlags(stderr io.Writer) *flags {
	f := &flags{set: pflag.NewFlagSet("chronosplit", pflag.ContinueOnError)}
	fs := f.set
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	def := splitmod.Defaults()
	fs.StringVarP(&f.maxSize, "max-size", "s", "", "per-file byte budget, plain bytes or humanized (5MiB, 500kB) (default 5MiB)")
	fs.StringVar(&f.timeFormat, "time-format", "", "custom timestamp pattern tried before the built-in ones (strftime or Go layout)")
	fs.BoolVarP(&f.textOnly, "text-only", "t", false, "write normalized text lines instead of JSON records")
	fs.StringVarP(&f.groupBy, "group-by", "g", def.GroupBy, "period granularity: month | year | all")
	fs.StringVar(&f.outputEncoding, "output-encoding", def.OutputEncoding, "charset of the written files (utf-8, shift_jis, euc-jp, gbk, ...)")
	fs.BoolVar(&f.detectCharset, "detect-charset", def.DetectCharset, "try a statistical charset guess before the fixed cascade")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "plan and log batches without writing files")
	fs.StringSliceVar(&f.timestampKeys, "timestamp-keys", nil, "timestamp field names tried in order (default created_at,timestamp,time,date)")
	fs.StringSliceVar(&f.arrayKeys, "array-keys", nil, "record array names tried in order (default tweet,tweets,data)")
	fs.StringSliceVar(&f.textKeys, "text-keys", nil, "text field names for --text-only (default full_text,text)")
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML file with option defaults")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading CHRONOSPLIT_* variables")
	fs.BoolVarP(&f.version, "version", "v", false, "print version and exit")
	return f
}

// run is main without the process exit so it can be driven from tests
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f := newFlags(stderr)
	if err := f.set.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.version {
		_, _ = fmt.Fprintln(stdout, version.Info().String())
		return 0
	}

	if err := config.LoadDotEnv(f.envFile); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return perr.ExitStatus(err)
	}
	logger.Init(logger.FromEnv())
	l := logger.Named("main")

	opts, in, err := f.resolve(l)
	if err != nil {
		l.Error().Err(err).Msg("invalid invocation")
		if perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			f.set.Usage()
		}
		return perr.ExitStatus(err)
	}

	root := config.New()
	m, err := splitmod.New(modkit.Deps{Log: logger.Get(), Cfg: root}, opts, in.OutDir)
	if err != nil {
		l.Error().Err(err).Msg("split module init failed")
		return perr.ExitStatus(err)
	}

	sum, err := modkit.MustPortsOf[splitmod.Ports](m).Runner.Run(ctx, in)
	if err != nil {
		ev := l.Error().Err(err).Str("code", perr.CodeOf(err).String())
		if e, ok := perr.As(err); ok {
			ev = ev.Str("op", e.Op()).Str("field", e.Field())
		}
		ev.Str("run_id", sum.RunID).Msg("split failed")
		return perr.ExitStatus(err)
	}

	report(stdout, sum)
	return 0
}

// resolve layers defaults < TOML file < env < positional size < flags.
// A positional size that is not a positive number is ignored with a warning
func (f *flags) resolve(l *logger.Logger) (splitmod.Options, domain.Input, error) {
	pos := f.set.Args()
	if len(pos) < 2 || len(pos) > 3 {
		return splitmod.Options{}, domain.Input{}, perr.InvalidArgf("expected <input> <output-dir> [max-size-MB], got %d arguments", len(pos))
	}
	in := domain.Input{Path: pos[0], OutDir: pos[1]}

	opts := splitmod.Defaults()
	if f.configPath != "" {
		if err := config.LoadFile(f.configPath, &opts); err != nil {
			return opts, in, err
		}
	}
	opts = splitmod.FromConfig(config.New(), opts)

	if len(pos) == 3 {
		mb, err := strconv.ParseFloat(pos[2], 64)
		n := mb * (1 << 20)
		if err == nil && n >= 1 && n < math.MaxInt64 {
			opts.MaxSize = splitmod.ByteSize(n)
		} else {
			l.Warn().Str("max-size-MB", pos[2]).Str("using", humanize.IBytes(uint64(opts.MaxSize))).
				Msg("max-size-MB is not a positive number; keeping the configured size")
		}
	}

	changed := f.set.Changed
	if changed("max-size") {
		n, err := config.ParseBytes(f.maxSize)
		if err != nil {
			return opts, in, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "bad --max-size %q", f.maxSize), "max-size")
		}
		opts.MaxSize = splitmod.ByteSize(n)
	}
	if changed("time-format") {
		opts.TimeFormat = f.timeFormat
	}
	if changed("text-only") {
		opts.TextOnly = f.textOnly
	}
	if changed("group-by") {
		opts.GroupBy = strings.ToLower(f.groupBy)
	}
	if changed("output-encoding") {
		opts.OutputEncoding = f.outputEncoding
	}
	if changed("detect-charset") {
		opts.DetectCharset = f.detectCharset
	}
	if changed("dry-run") {
		opts.DryRun = f.dryRun
	}
	if changed("timestamp-keys") {
		opts.TimestampKeys = f.timestampKeys
	}
	if changed("array-keys") {
		opts.ArrayKeys = f.arrayKeys
	}
	if changed("text-keys") {
		opts.TextKeys = f.textKeys
	}
	return opts, in, nil
}

// report prints the human summary on stdout; logs carry the detail
func report(w io.Writer, sum domain.Summary) {
	if sum.Empty() {
		_, _ = fmt.Fprintf(w, "%s: no records found; nothing written\n", sum.Input)
		return
	}
	verb := "wrote"
	if sum.DryRun {
		verb = "would write"
	}
	_, _ = fmt.Fprintf(w, "%s %d file(s), %s, %d period(s) from %d record(s) [%s]\n",
		verb, batchesOrFiles(sum), humanize.Bytes(uint64(sum.BytesWritten)), len(sum.Periods), sum.Grouped, sum.Encoding)
	if d := sum.Dropped(); d > 0 {
		_, _ = fmt.Fprintf(w, "dropped %d record(s): %d missing timestamp, %d unparseable\n", d, sum.Missing, sum.Unparseable)
	}
	if sum.Unwrapped > 0 {
		_, _ = fmt.Fprintf(w, "skipped %d element(s) without the record wrapper\n", sum.Unwrapped)
	}
	if sum.WriteFailures > 0 {
		_, _ = fmt.Fprintf(w, "%d unit(s) failed to write; see log\n", sum.WriteFailures)
	}
}

func batchesOrFiles(sum domain.Summary) int {
	if sum.DryRun {
		return sum.Batches
	}
	return len(sum.Files)
}
