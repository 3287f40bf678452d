package planner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoLegs is returned if a trip record doesn't contain any train segments.
	ErrNoLegs = errors.New("trip has no legs")
	// ErrIncompleteLeg is returned if a leg is missing its departure or arrival time.
	ErrIncompleteLeg = errors.New("leg is missing departure or arrival")
)

// fieldPath is a sequence of keys to follow through nested leg objects.
type fieldPath []string

// The provider has reported identifiers under several names over time.
// Candidates are tried in order and the first present value wins.
var (
	trainNumberFields = []fieldPath{
		{"train_number"},
		{"trainNumber"},
		{"data", "trainNumber"},
		{"data", "train_number"},
	}
	platformNumberFields = []fieldPath{
		{"platform_number"},
		{"platformNumber"},
		{"platform"},
		{"data", "platformNumber"},
		{"data", "platform"},
		{"data", "originPlatform"},
	}
)

func (fp fieldPath) lookup(leg RawLeg) (interface{}, bool) {
	var curr interface{} = leg
	for _, key := range fp {
		var obj map[string]interface{}
		switch v := curr.(type) {
		case RawLeg:
			obj = v
		case map[string]interface{}:
			obj = v
		default:
			return nil, false
		}

		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		curr = next
	}

	if curr == nil {
		return nil, false
	} else if s, ok := curr.(string); ok && len(strings.TrimSpace(s)) < 1 {
		return nil, false
	}
	return curr, true
}

// firstPresent returns the value of the first candidate path present on the leg, or nil.
func firstPresent(leg RawLeg, candidates []fieldPath) interface{} {
	for _, path := range candidates {
		if val, ok := path.lookup(leg); ok {
			return val
		}
	}
	return nil
}

// Dropped records a raw trip that could not be converted into a route.
type Dropped struct {
	Index int
	Err   error
}

// ExtractRoutes converts raw trip records into routes, in input order.
// A record that can't be converted is skipped and reported in the returned
// dropped list; it never aborts the batch.
func ExtractRoutes(logger *zap.Logger, trips []RawTrip, loc *time.Location) ([]*Route, []Dropped) {
	var routes []*Route
	var dropped []Dropped

	for idx, trip := range trips {
		route, err := extractRoute(logger, trip, loc)
		if err != nil {
			logger.Warn("dropping trip record",
				zap.Int("index", idx),
				zap.String("start_time", trip.StartTime),
				zap.String("end_time", trip.EndTime),
				zap.Error(err),
			)
			dropped = append(dropped, Dropped{Index: idx, Err: err})
			continue
		}
		routes = append(routes, route)
	}

	logger.Debug("extracted routes",
		zap.Int("trip_count", len(trips)),
		zap.Int("route_count", len(routes)),
		zap.Int("dropped_count", len(dropped)),
	)
	return routes, dropped
}

func extractRoute(logger *zap.Logger, trip RawTrip, loc *time.Location) (*Route, error) {
	start, err := ParseTimestamp(trip.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	end, err := ParseTimestamp(trip.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}
	if len(trip.Trains) < 1 {
		return nil, ErrNoLegs
	}

	route := &Route{}
	for idx, rawLeg := range trip.Trains {
		leg, err := extractLeg(rawLeg, loc)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", idx, err)
		}
		route.Legs = append(route.Legs, leg)
	}

	sort.SliceStable(route.Legs, func(i, j int) bool {
		return route.Legs[i].Departure.Before(route.Legs[j].Departure)
	})

	if !start.Equal(route.Departure()) || !end.Equal(route.Arrival()) {
		logger.Debug("trip times differ from its legs, using legs",
			zap.Time("start_time", start),
			zap.Time("end_time", end),
			zap.Time("first_departure", route.Departure()),
			zap.Time("last_arrival", route.Arrival()),
		)
	}

	return route, nil
}

func extractLeg(raw RawLeg, loc *time.Location) (*Leg, error) {
	depStr, _ := raw["departure"].(string)
	arrStr, _ := raw["arrival"].(string)
	if len(depStr) < 1 || len(arrStr) < 1 {
		return nil, ErrIncompleteLeg
	}

	dep, err := ParseTimestamp(depStr, loc)
	if err != nil {
		return nil, fmt.Errorf("departure: %w", err)
	}
	arr, err := ParseTimestamp(arrStr, loc)
	if err != nil {
		return nil, fmt.Errorf("arrival: %w", err)
	}

	return &Leg{
		Departure:      dep,
		Arrival:        arr,
		TrainNumber:    firstPresent(raw, trainNumberFields),
		PlatformNumber: firstPresent(raw, platformNumberFields),
		rawDeparture:   depStr,
		rawArrival:     arrStr,
	}, nil
}
