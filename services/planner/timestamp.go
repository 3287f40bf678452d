package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTimezone is the civil timezone offset-less schedule times are reported in.
	DefaultTimezone = "Asia/Jerusalem"

	deadlineDateFormat = "2006-01-02"
	deadlineTimeFormat = "1504"
	utcFormat          = "2006-01-02T15:04:05.999999-07:00"
)

var (
	// ErrMalformedTimestamp is returned if a timestamp can't be parsed by any of the supported layouts.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// Layouts tried, in order, for timestamps that don't carry a zone.
	// Fractional seconds are accepted by time.Parse even when the layout omits them.
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	// Layouts tried, in order, for timestamps that do carry a zone.
	zonedLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05Z07",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
)

// LoadReferenceZone resolves the named timezone used for offset-less timestamps and deadlines.
func LoadReferenceZone(name string) (*time.Location, error) {
	if len(name) < 1 {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

// ParseTimestamp converts an ISO-8601 style timestamp into an instant.
// Timestamps with a Z or offset suffix are honoured as-is; those without are
// taken as wall clock time in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 1 {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// ParseDeadline combines a YYYY-MM-DD date and an HHMM time into the wall clock instant in loc.
func ParseDeadline(date string, hhmm string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	hhmm = strings.TrimSpace(hhmm)

	t, err := time.ParseInLocation(deadlineDateFormat+" "+deadlineTimeFormat, date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: arrival %q %q", ErrMalformedTimestamp, date, hhmm)
	}
	return t, nil
}

// FormatUTC renders the instant as an ISO-8601 UTC string with an explicit +00:00 offset.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(utcFormat)
}

func minutes(d time.Duration) float64 {
	return d.Minutes()
}
