package timeline

import (
	"strings"
	"time"

	perr "chronosplit/internal/platform/errors"
	ptime "chronosplit/internal/platform/time"
)

// Strategy turns a timestamp string into a time. ok is false when the string does not match
type Strategy interface {
	Parse(s string) (time.Time, bool)
}

// Layout is a Strategy backed by a Go reference layout
type Layout string

// Parse implements Strategy
func (l Layout) Parse(s string) (time.Time, bool) {
	t, err := time.Parse(string(l), s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StrategyFunc adapts a plain function to Strategy
type StrategyFunc func(s string) (time.Time, bool)

// Parse implements Strategy
func (f StrategyFunc) Parse(s string) (time.Time, bool) { return f(s) }

// Built-in layouts, tried in this order after any custom format
const (
	// LayoutTwitter is the archive created_at shape, e.g. "Wed Oct 10 20:19:24 +0000 2018"
	LayoutTwitter = time.RubyDate
	// LayoutISOMicro is an ISO instant with optional fractional seconds and a literal Z
	LayoutISOMicro = "2006-01-02T15:04:05.999999Z"
	// LayoutDateTime is a plain space-separated date and time
	LayoutDateTime = "2006-01-02 15:04:05"
	// LayoutDate is a bare calendar date
	LayoutDate = "2006-01-02"
)

// DefaultStrategies is the built-in cascade
func DefaultStrategies() []Strategy {
	return []Strategy{
		Layout(LayoutTwitter),
		Layout(LayoutISOMicro),
		Layout(LayoutDateTime),
		Layout(time.RFC3339Nano),
		Layout(LayoutDate),
	}
}

// Strategies returns the cascade with an optional custom format in front.
// custom is a strftime pattern ("%Y/%m/%d %H:%M") or, without any '%', a Go layout
func Strategies(custom string) ([]Strategy, error) {
	def := DefaultStrategies()
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return def, nil
	}
	layout, ok := ptime.Layout(custom)
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("timeline: time format %q has an unsupported directive or literal", custom), "time_format")
	}
	return append([]Strategy{Layout(layout)}, def...), nil
}

// parseFirst runs the cascade; first match wins
func parseFirst(ss []Strategy, s string) (time.Time, bool) {
	for _, st := range ss {
		if t, ok := st.Parse(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
