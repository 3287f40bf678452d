package planner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnrankedRoute is returned if a route without an ID is formatted.
	ErrUnrankedRoute = errors.New("route has not been ranked")
)

// Train is the external representation of a leg.
type Train struct {
	Departure      string      `json:"departure"`
	Arrival        string      `json:"arrival"`
	TrainNumber    interface{} `json:"trainNumber"`
	PlatformNumber interface{} `json:"platformNumber"`
}

// FormattedRoute is the external representation of a ranked route.
type FormattedRoute struct {
	RouteID      string        `json:"route_id"`
	StartTime    string        `json:"startTime"`
	EndTime      string        `json:"endTime"`
	Trains       []Train       `json:"trains"`
	BackupRoutes []BackupMatch `json:"backupRoutes"`
}

// RouteEnvelope wraps a formatted route in the response list.
type RouteEnvelope struct {
	Route *FormattedRoute `json:"route"`
}

// FormattedWindow is the external representation of a window option.
type FormattedWindow struct {
	FirstRoute          *FormattedRoute `json:"first_route"`
	LaterRoute          *FormattedRoute `json:"later_route"`
	DepartureGapMinutes float64         `json:"departure_gap_minutes"`
	ArrivalDiffMinutes  float64         `json:"arrival_diff_minutes"`
	TimeSavedMinutes    float64         `json:"time_saved_minutes"`
	TargetArrival       string          `json:"target_arrival"`
}

// FormatRoute renders a ranked route and its backups.
// Leg times are re-read from the provider's own strings so each one is converted on its own terms.
func FormatRoute(route *Route, backups []BackupMatch, loc *time.Location) (*FormattedRoute, error) {
	if len(route.ID) < 1 {
		return nil, ErrUnrankedRoute
	} else if len(route.Legs) < 1 {
		return nil, ErrNoLegs
	}

	ret := &FormattedRoute{
		RouteID:      route.ID,
		StartTime:    FormatUTC(route.Departure()),
		EndTime:      FormatUTC(route.Arrival()),
		Trains:       make([]Train, 0, len(route.Legs)),
		BackupRoutes: backups,
	}

	for idx, leg := range route.Legs {
		dep, err := ParseTimestamp(leg.rawDeparture, loc)
		if err != nil {
			return nil, fmt.Errorf("train %d departure: %w", idx, err)
		}
		arr, err := ParseTimestamp(leg.rawArrival, loc)
		if err != nil {
			return nil, fmt.Errorf("train %d arrival: %w", idx, err)
		}

		ret.Trains = append(ret.Trains, Train{
			Departure:      FormatUTC(dep),
			Arrival:        FormatUTC(arr),
			TrainNumber:    leg.TrainNumber,
			PlatformNumber: leg.PlatformNumber,
		})
	}

	return ret, nil
}

// FormatRoutes renders each ranked route along with its backups under the constraints.
// A route that fails to render is logged and left out; the rest are still returned.
func FormatRoutes(logger *zap.Logger, ranked []*Route, c Constraints, loc *time.Location) []RouteEnvelope {
	ret := []RouteEnvelope{}
	for idx, route := range ranked {
		backups := FindBackups(ranked, idx, c)
		logger.Debug("matched backups",
			zap.String("route_id", route.ID),
			zap.Int("backup_count", len(backups)),
		)

		formatted, err := FormatRoute(route, backups, loc)
		if err != nil {
			logger.Warn("dropping route from response",
				zap.String("route_id", route.ID),
				zap.Error(err),
			)
			continue
		}
		ret = append(ret, RouteEnvelope{Route: formatted})
	}
	return ret
}

// FormatWindow renders a window option along with the arrival target it was computed for.
func FormatWindow(option *WindowOption, target time.Time, loc *time.Location) (*FormattedWindow, error) {
	first, err := FormatRoute(option.First, []BackupMatch{}, loc)
	if err != nil {
		return nil, fmt.Errorf("first route: %w", err)
	}
	later, err := FormatRoute(option.Later, []BackupMatch{}, loc)
	if err != nil {
		return nil, fmt.Errorf("later route: %w", err)
	}

	return &FormattedWindow{
		FirstRoute:          first,
		LaterRoute:          later,
		DepartureGapMinutes: option.DepartureGapMinutes,
		ArrivalDiffMinutes:  option.ArrivalDiffMinutes,
		TimeSavedMinutes:    option.TimeSavedMinutes,
		TargetArrival:       FormatUTC(target),
	}, nil
}
