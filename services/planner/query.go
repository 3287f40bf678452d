package planner

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultMinDepartureGap is the default number of minutes an alternative must leave after the primary.
	DefaultMinDepartureGap = 5
	// DefaultMaxArrivalDiff is the default number of minutes an alternative may arrive after the primary.
	DefaultMaxArrivalDiff = 10
)

var (
	// ErrMissingParameter is returned if a required request parameter is absent.
	ErrMissingParameter = errors.New("missing required parameters")
	// ErrInvalidParameter is returned if a numeric request parameter can't be parsed.
	ErrInvalidParameter = errors.New("invalid parameter value")
)

// Defaults are the constraint values used when a request doesn't supply its own.
type Defaults struct {
	MinDepartureGapMins int
	MaxArrivalDiffMins  int
}

// Query is a single planning request.
type Query struct {
	Source      string
	Dest        string
	ArrivalDate string
	ArrivalTime string

	Constraints Constraints
}

// ParseQuery reads a planning request from URL query values.
// source, dest, arrival_date and arrival_time are required;
// min_departure_gap and max_arrival_diff fall back to the supplied defaults.
func ParseQuery(values url.Values, defaults Defaults) (*Query, error) {
	q := &Query{
		Source:      strings.TrimSpace(values.Get("source")),
		Dest:        strings.TrimSpace(values.Get("dest")),
		ArrivalDate: strings.TrimSpace(values.Get("arrival_date")),
		ArrivalTime: strings.TrimSpace(values.Get("arrival_time")),
	}
	if len(q.Source) < 1 || len(q.Dest) < 1 || len(q.ArrivalDate) < 1 || len(q.ArrivalTime) < 1 {
		return nil, ErrMissingParameter
	}

	gap, err := optionalMinutes(values, "min_departure_gap", defaults.MinDepartureGapMins)
	if err != nil {
		return nil, err
	}
	diff, err := optionalMinutes(values, "max_arrival_diff", defaults.MaxArrivalDiffMins)
	if err != nil {
		return nil, err
	}

	q.Constraints = NewConstraints(gap, diff)
	return q, nil
}

func optionalMinutes(values url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if len(raw) < 1 {
		return def, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, name, raw)
	} else if val < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidParameter, name)
	}
	return val, nil
}
