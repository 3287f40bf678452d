package planner

import (
	"sort"
	"time"
)

// WindowOption is a pair of routes where the later one can stand in for the first.
type WindowOption struct {
	First *Route
	Later *Route

	DepartureGapMinutes float64
	ArrivalDiffMinutes  float64
	TimeSavedMinutes    float64
}

// FindWindowOptions pairs every route with each route departing at least the
// minimum gap after it that arrives no more than the maximum difference after it.
// The options are ordered by the arrival of their first route, earliest first.
func FindWindowOptions(routes []*Route, c Constraints) []WindowOption {
	byDeparture := make([]*Route, len(routes))
	copy(byDeparture, routes)
	sort.SliceStable(byDeparture, func(i, j int) bool {
		return byDeparture[i].Departure().Before(byDeparture[j].Departure())
	})

	// minArrival[i] is the earliest arrival among byDeparture[i:].
	// Once it is past the allowed arrival no remaining candidate can qualify.
	minArrival := make([]time.Time, len(byDeparture)+1)
	for i := len(byDeparture) - 1; i >= 0; i-- {
		minArrival[i] = byDeparture[i].Arrival()
		if i+1 < len(byDeparture) && minArrival[i+1].Before(minArrival[i]) {
			minArrival[i] = minArrival[i+1]
		}
	}

	var options []WindowOption
	for i, first := range byDeparture {
		earliestDeparture := first.Departure().Add(c.MinDepartureGap)
		latestArrival := first.Arrival().Add(c.MaxArrivalDiff)

		start := i + 1 + sort.Search(len(byDeparture)-i-1, func(k int) bool {
			return !byDeparture[i+1+k].Departure().Before(earliestDeparture)
		})

		for j := start; j < len(byDeparture); j++ {
			if minArrival[j].After(latestArrival) {
				break
			}

			later := byDeparture[j]
			if later.Arrival().After(latestArrival) {
				continue
			}

			options = append(options, WindowOption{
				First:               first,
				Later:               later,
				DepartureGapMinutes: minutes(later.Departure().Sub(first.Departure())),
				ArrivalDiffMinutes:  minutes(later.Arrival().Sub(first.Arrival())),
				TimeSavedMinutes:    minutes(later.Departure().Sub(first.Departure())),
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].First.Arrival().Before(options[j].First.Arrival())
	})
	return options
}

// BestWindow picks the option whose first route arrives latest.
// This is the selection the single route endpoint has always exposed; it is
// not the option saving the most time. Returns nil if there are no options.
func BestWindow(options []WindowOption) *WindowOption {
	if len(options) < 1 {
		return nil
	}
	best := options[len(options)-1]
	return &best
}
