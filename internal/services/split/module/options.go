package module

import (
	stderrs "errors"
	"reflect"
	"sync"

	"chronosplit/internal/platform/config"
	perr "chronosplit/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxSize is the per-file budget when nothing is configured
const DefaultMaxSize ByteSize = 5 << 20

// ByteSize is a byte count that also accepts humanized strings ("5MiB", "500kB") from config files
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := config.ParseBytes(string(text))
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

// Options controls one split run
type Options struct {
	MaxSize        ByteSize `toml:"max_size" validate:"gt=0"`
	TimeFormat     string   `toml:"time_format"`
	TextOnly       bool     `toml:"text_only"`
	GroupBy        string   `toml:"group_by" validate:"oneof=month year all"`
	OutputEncoding string   `toml:"output_encoding" validate:"required"`
	DetectCharset  bool     `toml:"detect_charset"`
	DryRun         bool     `toml:"dry_run"`

	// TimestampKeys, ArrayKeys and TextKeys replace the built-in key lists when set
	TimestampKeys []string `toml:"timestamp_keys" validate:"omitempty,dive,required"`
	ArrayKeys     []string `toml:"array_keys" validate:"omitempty,dive,required"`
	TextKeys      []string `toml:"text_keys" validate:"omitempty,dive,required"`
}

// Defaults are the built-in option values
func Defaults() Options {
	return Options{
		MaxSize:        DefaultMaxSize,
		GroupBy:        "month",
		OutputEncoding: "utf-8",
		DetectCharset:  true,
	}
}

// FromConfig overlays CHRONOSPLIT_* environment values on base.
// Key lists are comma separated; an invalid GROUP_BY keeps base
func FromConfig(cfg config.Conf, base Options) Options {
	c := cfg.Prefix("CHRONOSPLIT_")
	return Options{
		MaxSize:        ByteSize(c.MayBytes("MAX_SIZE", int64(base.MaxSize))),
		TimeFormat:     c.MayString("TIME_FORMAT", base.TimeFormat),
		TextOnly:       c.MayBool("TEXT_ONLY", base.TextOnly),
		GroupBy:        c.MayEnum("GROUP_BY", base.GroupBy, groupings...),
		OutputEncoding: c.MayString("OUTPUT_ENCODING", base.OutputEncoding),
		DetectCharset:  c.MayBool("DETECT_CHARSET", base.DetectCharset),
		DryRun:         c.MayBool("DRY_RUN", base.DryRun),
		TimestampKeys:  c.MayCSV("TIMESTAMP_KEYS", base.TimestampKeys),
		ArrayKeys:      c.MayCSV("ARRAY_KEYS", base.ArrayKeys),
		TextKeys:       c.MayCSV("TEXT_KEYS", base.TextKeys),
	}
}

// groupings are the accepted GroupBy values
var groupings = []string{"month", "year", "all"}

type validatorSvc struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	vOnce sync.Once
	vSvc  validatorSvc
)

// validation is a singleton validator with english messages and toml names
func validation() validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("toml")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		vSvc = validatorSvc{v: v, trans: trans}
	})
	return vSvc
}

// Validate checks option ranges. The first failing field is reported as ErrorCodeValidation
func (o Options) Validate() error {
	svc := validation()
	err := svc.v.Struct(o)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !stderrs.As(err, &ves) || len(ves) == 0 {
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid options")
	}
	fe := ves[0]
	return perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, fe.Translate(svc.trans)), fe.Field())
}
