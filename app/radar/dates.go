package radar

import (
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimestampLayout is the canonical storage format: ISO-8601 UTC with an
// explicit offset, never naive.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// ParseDateTime parses the heterogeneous timestamp strings emitted by the
// sources. Strict RFC3339 first, then a permissive general parse, then an
// RFC-822 mailbox date as a last resort. Timestamps without an offset are
// assumed UTC.
func ParseDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), true
	}

	if parsed, err := dateparse.ParseIn(value, time.UTC); err == nil {
		return parsed.UTC(), true
	}

	if parsed, err := mail.ParseDate(value); err == nil {
		return parsed.UTC(), true
	}

	return time.Time{}, false
}

// TimePolicy is the freshness-window policy applied to every candidate.
type TimePolicy struct {
	MinDate    time.Time // absolute floor; anything earlier is stale
	MaxAgeDays int       // rolling window relative to now
}

// NormalizePublishedAt converts a raw timestamp into the canonical UTC form.
// It reports false when the value is missing, unparseable, before the floor
// date, or older than the rolling freshness window. The caller supplies now
// so behavior is reproducible.
func (p TimePolicy) NormalizePublishedAt(value string, now time.Time) (string, bool) {
	parsed, ok := ParseDateTime(value)
	if !ok {
		return "", false
	}

	cutoff := now.UTC().AddDate(0, 0, -p.MaxAgeDays)
	if parsed.Before(p.MinDate) || parsed.Before(cutoff) {
		return "", false
	}

	return parsed.UTC().Format(TimestampLayout), true
}

// FormatTimestamp renders t in the canonical storage form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
