package planner

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaxRankedRoutes is the most routes returned for a single request.
const MaxRankedRoutes = 10

// FilterByDeadline returns the routes arriving at or before the deadline, in input order.
func FilterByDeadline(routes []*Route, deadline time.Time) []*Route {
	var ret []*Route
	for _, route := range routes {
		if !route.Arrival().After(deadline) {
			ret = append(ret, route)
		}
	}
	return ret
}

// Rank filters the routes by the deadline, orders them from latest to earliest
// arrival and keeps at most MaxRankedRoutes of them. Each retained route is
// given a newly generated ID. An empty result means no route can make it in time.
func Rank(routes []*Route, deadline time.Time) []*Route {
	ranked := FilterByDeadline(routes, deadline)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Arrival().After(ranked[j].Arrival())
	})

	if len(ranked) > MaxRankedRoutes {
		ranked = ranked[:MaxRankedRoutes]
	}

	for _, route := range ranked {
		route.ID = uuid.New().String()
	}
	return ranked
}
