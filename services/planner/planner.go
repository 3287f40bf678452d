package planner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUpstreamFetch is wrapped by fetcher errors reporting the schedule provider could not be queried.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrUnknownStation is wrapped by fetcher errors reporting a station could not be resolved.
	ErrUnknownStation = errors.New("unknown station")
)

// fetchLookback is how far before the requested arrival the schedule query starts.
const fetchLookback = time.Hour

// Fetcher retrieves the raw trip candidates between two stations, departing from the supplied time onwards.
type Fetcher interface {
	FetchTrips(ctx context.Context, source string, dest string, from time.Time) ([]RawTrip, error)
}

// Planner computes routes for planning requests using trips retrieved from the fetcher.
// It holds no per-request state and is safe for concurrent use.
type Planner struct {
	logger  *zap.Logger
	fetcher Fetcher
	loc     *time.Location
}

// NewPlanner creates a new planner interpreting offset-less times and deadlines in loc.
func NewPlanner(logger *zap.Logger, fetcher Fetcher, loc *time.Location) *Planner {
	return &Planner{
		logger:  logger,
		fetcher: fetcher,
		loc:     loc,
	}
}

// Location is the reference timezone of this planner.
func (p *Planner) Location() *time.Location {
	return p.loc
}

// Routes returns up to MaxRankedRoutes routes arriving by the requested time, latest arrival first,
// each with the backups available to it. An empty result means no routes were found.
// Errors from the fetcher are returned unchanged.
func (p *Planner) Routes(ctx context.Context, logger *zap.Logger, q *Query) ([]RouteEnvelope, error) {
	if logger == nil {
		logger = p.logger
	}

	deadline, routes, err := p.candidates(ctx, logger, q)
	if err != nil {
		return nil, err
	}

	ranked := Rank(routes, deadline)
	if len(ranked) < 1 {
		logger.Info("no routes arrive in time",
			zap.Time("deadline", deadline),
			zap.Int("candidate_count", len(routes)),
		)
		return []RouteEnvelope{}, nil
	}

	ret := FormatRoutes(logger, ranked, q.Constraints, p.loc)
	logger.Info("planned routes",
		zap.Int("ranked_count", len(ranked)),
		zap.Int("formatted_count", len(ret)),
	)
	return ret, nil
}

// OptimalDeparture returns the single route pairing served by /train_route, or nil if none qualifies.
// See BestWindow for how the pairing is chosen.
func (p *Planner) OptimalDeparture(ctx context.Context, logger *zap.Logger, q *Query) (*FormattedWindow, error) {
	if logger == nil {
		logger = p.logger
	}

	deadline, routes, err := p.candidates(ctx, logger, q)
	if err != nil {
		return nil, err
	}

	options := FindWindowOptions(FilterByDeadline(routes, deadline), q.Constraints)
	best := BestWindow(options)
	if best == nil {
		logger.Info("no window options found",
			zap.Time("deadline", deadline),
			zap.Int("candidate_count", len(routes)),
		)
		return nil, nil
	}

	for _, route := range []*Route{best.First, best.Later} {
		if len(route.ID) < 1 {
			route.ID = uuid.New().String()
		}
	}

	logger.Info("selected window option",
		zap.Int("option_count", len(options)),
		zap.Float64("time_saved_minutes", best.TimeSavedMinutes),
	)
	return FormatWindow(best, deadline, p.loc)
}

func (p *Planner) candidates(ctx context.Context, logger *zap.Logger, q *Query) (time.Time, []*Route, error) {
	deadline, err := ParseDeadline(q.ArrivalDate, q.ArrivalTime, p.loc)
	if err != nil {
		return time.Time{}, nil, err
	}

	from := deadline.Add(-fetchLookback)
	logger.Info("fetching trips",
		zap.String("source", q.Source),
		zap.String("dest", q.Dest),
		zap.Time("from", from),
		zap.Time("deadline", deadline),
	)

	trips, err := p.fetcher.FetchTrips(ctx, q.Source, q.Dest, from)
	if err != nil {
		logger.Warn("error fetching trips",
			zap.Error(err),
		)
		return time.Time{}, nil, err
	}

	routes, _ := ExtractRoutes(logger, trips, p.loc)
	return deadline, routes, nil
}
