// Package format converts backend values into display strings.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// ISODate is the YYYY-MM-DD layout used for series keys and event dates.
	ISODate = "2006-01-02"

	longTimeLayout = "3:04:05 PM UTC"
)

// ParseTimestamp parses an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, nil
	}
	return time.Parse(ISODate, ts)
}

// ShortDate returns the UTC date portion of t as YYYY-MM-DD.
// The zero time formats as an empty string.
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISODate)
}

// LongTime returns the UTC time of day of t, e.g. "3:04:05 PM UTC".
// The zero time formats as an empty string.
func LongTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(longTimeLayout)
}

// ToShortDate is ShortDate over a timestamp string. Input that does not
// parse is returned unchanged.
func ToShortDate(ts string) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(ISODate)
}

// ToLongTime is LongTime over a timestamp string. Input that does not
// parse is returned unchanged.
func ToLongTime(ts string) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(longTimeLayout)
}

// Thousands formats n with comma thousands separators.
func Thousands(n int64) string {
	return humanize.Comma(n)
}

// Ratio renders a followers/following pair, e.g. "1,204/310".
func Ratio(followers, following int64) string {
	return Thousands(followers) + "/" + Thousands(following)
}
