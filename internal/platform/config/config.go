// Package config handles application configuration via environment variables,
// optional dotenv files and an optional TOML file
package config

import (
	"os"
	"strconv"
	"strings"

	"chronosplit/internal/platform/logger"

	"github.com/dustin/go-humanize"
)

// Conf is a namespaced view over environment variables (e.g., "CHRONOSPLIT_", "LOG_")
// Use New() for global access, or Prefix("CHRONOSPLIT_") for module scopes.
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("CHRONOSPLIT_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully-qualified env var name
func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value and whether it carries content
func (c Conf) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(key)))
	return v, v != ""
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MayBytes returns a byte size or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBytes(key string, def int64) int64 {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	if n, err := ParseBytes(s); err == nil {
		return n
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Str("default", humanize.IBytes(uint64(max(def, 0)))).
		Msg("invalid byte size; using default")
	return def
}

// MayCSV returns a slice of strings from a comma-separated env var; def if missing/empty
func (c Conf) MayCSV(key string, def []string) []string {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the allowed spelling matching the value case-insensitively, or def
// if missing/empty; logs and returns def if the value is not allowed
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Str("default", def).
		Msg("invalid enum value; using default")
	return def
}

// ParseBytes accepts a plain byte count or a humanized size (5MiB, 5 MB, 500kB)
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
