package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rivo/tview"
	"github.com/rmrobinson/trainroute/services/planner"
	"github.com/rmrobinson/trainroute/services/rail"
	"github.com/rmrobinson/trainroute/services/ui/board/widget"
	"go.uber.org/zap"
)

func main() {
	var (
		source          = flag.String("source", "", "The station to depart from")
		dest            = flag.String("dest", "", "The station to arrive at")
		arrivalDate     = flag.String("date", time.Now().Format("2006-01-02"), "The date to arrive by, as YYYY-MM-DD")
		arrivalTime     = flag.String("time", "", "The time to arrive by, as HHMM")
		minDepartureGap = flag.Int("min-departure-gap", planner.DefaultMinDepartureGap, "The minutes a backup must leave after the primary route")
		maxArrivalDiff  = flag.Int("max-arrival-diff", planner.DefaultMaxArrivalDiff, "The minutes a backup may arrive after the primary route")
		upstreamURL     = flag.String("upstream-url", rail.DefaultBaseURL, "The base URL of the rail timetable API")
		apiKey          = flag.String("api-key", os.Getenv("TRP_UPSTREAM_API_KEY"), "The subscription key for the rail timetable API")
		timezone        = flag.String("timezone", planner.DefaultTimezone, "The timezone schedule times are reported in")
		legacy          = flag.Bool("legacy", false, "Print the single optimal departure window instead of the ranked routes")
		raw             = flag.Bool("raw", false, "Dump the raw trips returned by the rail timetable API")
		board           = flag.Bool("board", false, "Display the ranked routes on a refreshing board")
		refresh         = flag.Duration("refresh", time.Minute, "How often the board re-plans the journey")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	if *board {
		// Logging to the terminal would corrupt the board.
		logger = zap.NewNop()
	}

	loc, err := planner.LoadReferenceZone(*timezone)
	if err != nil {
		logger.Fatal("error loading timezone",
			zap.String("timezone", *timezone),
			zap.Error(err),
		)
	}

	registry := rail.NewRegistry(logger)
	if err := registry.LoadDefault(); err != nil {
		logger.Fatal("error loading station table",
			zap.Error(err),
		)
	}
	client := rail.NewClient(logger, registry, *upstreamURL, *apiKey, time.Second*30)
	p := planner.NewPlanner(logger, client, loc)

	q := &planner.Query{
		Source:      *source,
		Dest:        *dest,
		ArrivalDate: *arrivalDate,
		ArrivalTime: *arrivalTime,
		Constraints: planner.NewConstraints(*minDepartureGap, *maxArrivalDiff),
	}
	if len(q.Source) < 1 || len(q.Dest) < 1 || len(q.ArrivalTime) < 1 {
		logger.Fatal("source, dest and time are required")
	}

	ctx := context.Background()
	switch {
	case *raw:
		deadline, err := planner.ParseDeadline(q.ArrivalDate, q.ArrivalTime, loc)
		if err != nil {
			logger.Fatal("invalid arrival",
				zap.Error(err),
			)
		}
		trips, err := client.FetchTrips(ctx, q.Source, q.Dest, deadline.Add(-time.Hour))
		if err != nil {
			logger.Fatal("error fetching trips",
				zap.Error(err),
			)
		}
		spew.Dump(trips)
	case *legacy:
		window, err := p.OptimalDeparture(ctx, nil, q)
		if err != nil {
			logger.Fatal("error planning",
				zap.Error(err),
			)
		} else if window == nil {
			logger.Info("no optimal route found")
			return
		}
		printJSON(window)
	case *board:
		runBoard(ctx, logger, p, q, loc, *refresh)
	default:
		routes, err := p.Routes(ctx, nil, q)
		if err != nil {
			logger.Fatal("error planning",
				zap.Error(err),
			)
		} else if len(routes) < 1 {
			logger.Info("no routes found")
			return
		}
		printJSON(routes)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func runBoard(ctx context.Context, logger *zap.Logger, p *planner.Planner, q *planner.Query, loc *time.Location, refresh time.Duration) {
	app := tview.NewApplication()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := widget.NewClock(app, loc)
	go clock.Run(ctx)

	title := q.Source + " → " + q.Dest + " by " + q.ArrivalTime
	routesView := widget.NewRoutes(app, title, planner.MaxRankedRoutes)

	go func() {
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()

		for {
			routes, err := p.Routes(ctx, logger, q)
			if err != nil {
				app.QueueUpdateDraw(func() {
					routesView.SetTitle(title + " (" + err.Error() + ")")
				})
			} else {
				var infos []widget.RouteInfo
				for _, env := range routes {
					info, err := widget.NewRouteInfo(env.Route, loc)
					if err != nil {
						continue
					}
					infos = append(infos, info)
				}
				app.QueueUpdateDraw(func() {
					routesView.SetTitle(title + " (" + strconv.Itoa(len(infos)) + ")")
				})
				routesView.Refresh(infos)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	layout := tview.NewFlex().
		AddItem(routesView, 0, 1, true).
		AddItem(clock, 24, 1, false)
	if err := app.SetRoot(layout, true).SetFocus(layout).Run(); err != nil {
		logger.Fatal("error running board",
			zap.Error(err),
		)
	}
}
