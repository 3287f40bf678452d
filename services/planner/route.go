package planner

import (
	"time"
)

// RawTrip is a single trip candidate as returned by the schedule provider.
// Only the fields the planner relies on are typed; legs are kept as free-form
// objects since the provider's shape for them isn't stable.
type RawTrip struct {
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Trains    []RawLeg `json:"trains"`
}

// RawLeg is one train segment of a raw trip.
type RawLeg map[string]interface{}

// Leg is one train segment of a route.
type Leg struct {
	Departure time.Time
	Arrival   time.Time

	// TrainNumber and PlatformNumber are either a json.Number, a string or nil.
	TrainNumber    interface{}
	PlatformNumber interface{}

	rawDeparture string
	rawArrival   string
}

// Route is a candidate trip made up of one or more legs, ordered by departure.
type Route struct {
	// ID is only populated once the route has been ranked.
	ID string

	Legs []*Leg
}

// Departure is the time the first leg of the route leaves.
func (r *Route) Departure() time.Time {
	return r.Legs[0].Departure
}

// Arrival is the time the last leg of the route arrives.
func (r *Route) Arrival() time.Time {
	return r.Legs[len(r.Legs)-1].Arrival
}

// Constraints bound which routes can act as an alternative to another.
type Constraints struct {
	// MinDepartureGap is how much later than the primary an alternative must leave.
	MinDepartureGap time.Duration
	// MaxArrivalDiff is how much later than the primary an alternative may arrive.
	MaxArrivalDiff time.Duration
}

// NewConstraints builds a constraint set from whole-minute values.
func NewConstraints(minDepartureGapMins int, maxArrivalDiffMins int) Constraints {
	return Constraints{
		MinDepartureGap: time.Duration(minDepartureGapMins) * time.Minute,
		MaxArrivalDiff:  time.Duration(maxArrivalDiffMins) * time.Minute,
	}
}
