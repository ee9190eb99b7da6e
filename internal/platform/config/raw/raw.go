// Package raw provides a minimal env reader used during bootstrap.
// It intentionally has NO dependency on the logger package to avoid import cycles
package raw

import (
	"os"
	"strings"
)

// Conf is a namespaced view over environment variables (e.g., "LOG_").
// A Conf may carry alias prefixes that are consulted, in order, when the primary key is unset,
// so CHRONOSPLIT_LOG_LEVEL and plain LOG_LEVEL can both drive the logger
type Conf struct {
	prefix  string
	aliases []string
}

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix applied to the primary and every alias
func (c Conf) Prefix(p string) Conf {
	out := Conf{prefix: c.prefix + p}
	for _, a := range c.aliases {
		out.aliases = append(out.aliases, a+p)
	}
	return out
}

// WithAlias returns a copy that also looks keys up under alt when the primary is blank
func (c Conf) WithAlias(alt string) Conf {
	out := Conf{prefix: c.prefix, aliases: make([]string, 0, len(c.aliases)+1)}
	out.aliases = append(out.aliases, c.aliases...)
	out.aliases = append(out.aliases, alt)
	return out
}

// lookup returns the first non-blank value among the primary key and its aliases
func (c Conf) lookup(key string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	for _, a := range c.aliases {
		if v := strings.TrimSpace(os.Getenv(a + key)); v != "" {
			return v
		}
	}
	return ""
}

// Get returns the trimmed env var or the provided default if empty
func (c Conf) Get(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// GetBool parses a bool-like env ("1|true|yes") with default fallback
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.lookup(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt parses a positive integer with default fallback; non-numeric -> def
func (c Conf) GetInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
