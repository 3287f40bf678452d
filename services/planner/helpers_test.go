package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func jerusalem(t *testing.T) *time.Location {
	t.Helper()

	loc, err := LoadReferenceZone("")
	require.NoError(t, err)
	return loc
}

// leg is a departure and arrival pair of raw timestamps.
type leg [2]string

func rawTrip(legs ...leg) RawTrip {
	trip := RawTrip{
		StartTime: legs[0][0],
		EndTime:   legs[len(legs)-1][1],
	}
	for idx, l := range legs {
		trip.Trains = append(trip.Trains, RawLeg{
			"departure":    l[0],
			"arrival":      l[1],
			"train_number": idx + 100,
		})
	}
	return trip
}

// route builds a single leg route from offset-less local timestamps on 2024-03-10.
func route(t *testing.T, id string, dep string, arr string) *Route {
	t.Helper()

	loc := jerusalem(t)
	depStr := "2024-03-10T" + dep + ":00"
	arrStr := "2024-03-10T" + arr + ":00"

	d, err := ParseTimestamp(depStr, loc)
	require.NoError(t, err)
	a, err := ParseTimestamp(arrStr, loc)
	require.NoError(t, err)

	return &Route{
		ID: id,
		Legs: []*Leg{
			{
				Departure:    d,
				Arrival:      a,
				rawDeparture: depStr,
				rawArrival:   arrStr,
			},
		},
	}
}

func localTime(t *testing.T, hhmm string) time.Time {
	t.Helper()

	ts, err := ParseTimestamp("2024-03-10T"+hhmm+":00", jerusalem(t))
	require.NoError(t, err)
	return ts
}

func routeIDs(routes []*Route) []string {
	var ids []string
	for _, r := range routes {
		ids = append(ids, r.ID)
	}
	return ids
}
