package planner

import (
	"sort"
)

// BackupMatch links a primary route to an alternative that leaves later but still arrives in time.
type BackupMatch struct {
	RouteID string `json:"route_id"`
	// DelayMinutes is how much later than the primary the alternative arrives.
	// It is negative if the alternative arrives first.
	DelayMinutes float64 `json:"delayMinutes"`
}

// FindBackups returns every other ranked route that departs at least the minimum
// gap after ranked[primaryIdx] and arrives no more than the maximum difference after it.
// Matches are ordered by delay, ties keeping ranked order.
func FindBackups(ranked []*Route, primaryIdx int, c Constraints) []BackupMatch {
	primary := ranked[primaryIdx]
	earliestDeparture := primary.Departure().Add(c.MinDepartureGap)
	latestArrival := primary.Arrival().Add(c.MaxArrivalDiff)

	ret := []BackupMatch{}
	for idx, route := range ranked {
		if idx == primaryIdx {
			continue
		} else if route.Departure().Before(earliestDeparture) {
			continue
		} else if route.Arrival().After(latestArrival) {
			continue
		}

		ret = append(ret, BackupMatch{
			RouteID:      route.ID,
			DelayMinutes: minutes(route.Arrival().Sub(primary.Arrival())),
		})
	}

	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].DelayMinutes < ret[j].DelayMinutes
	})
	return ret
}
