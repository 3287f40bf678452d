package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
	"github.com/rmrobinson/trainroute/services/planner"
)

// RouteInfo is the summary of a planned route shown on a single row of the board.
type RouteInfo struct {
	Departure time.Time
	Arrival   time.Time

	Trains      []string
	BackupCount int
}

// NewRouteInfo summarizes a formatted route, converting its times into loc.
func NewRouteInfo(route *planner.FormattedRoute, loc *time.Location) (RouteInfo, error) {
	dep, err := planner.ParseTimestamp(route.StartTime, loc)
	if err != nil {
		return RouteInfo{}, err
	}
	arr, err := planner.ParseTimestamp(route.EndTime, loc)
	if err != nil {
		return RouteInfo{}, err
	}

	info := RouteInfo{
		Departure:   dep.In(loc),
		Arrival:     arr.In(loc),
		BackupCount: len(route.BackupRoutes),
	}
	for _, train := range route.Trains {
		if train.TrainNumber == nil {
			info.Trains = append(info.Trains, "?")
			continue
		}
		info.Trains = append(info.Trains, fmt.Sprintf("%v", train.TrainNumber))
	}
	return info, nil
}

func (ri RouteInfo) summary() string {
	return fmt.Sprintf("%s → %s  %s",
		ri.Departure.Format("15:04"),
		ri.Arrival.Format("15:04"),
		strings.Join(ri.Trains, ", "),
	)
}

func (ri RouteInfo) backupText() string {
	switch ri.BackupCount {
	case 0:
		return "no backup"
	case 1:
		return "1 backup"
	default:
		return fmt.Sprintf("%d backups", ri.BackupCount)
	}
}

type routeRecord struct {
	*tview.Flex

	summaryText *tview.TextView
	backupText  *tview.TextView
}

func newRouteRecord() *routeRecord {
	rr := &routeRecord{
		Flex:        tview.NewFlex(),
		summaryText: tview.NewTextView(),
		backupText:  tview.NewTextView(),
	}

	rr.summaryText.SetTextAlign(tview.AlignLeft)
	rr.backupText.SetTextAlign(tview.AlignRight)

	rr.SetDirection(tview.FlexColumn).
		AddItem(rr.summaryText, 0, 1, false).
		AddItem(rr.backupText, 11, 1, false)

	return rr
}

// Routes is a widget that displays the ranked routes for a journey, latest arrival first.
type Routes struct {
	*tview.Flex

	app *tview.Application

	records []*routeRecord
}

// NewRoutes creates a new routes widget with the specified number of rows.
// It will not show any data until Refresh() is called to display the data.
func NewRoutes(app *tview.Application, title string, rowCount int) *Routes {
	r := &Routes{
		Flex: tview.NewFlex(),
		app:  app,
	}

	r.SetBorder(true).
		SetTitle(title).
		SetTitleAlign(tview.AlignLeft)

	r.SetDirection(tview.FlexRow)
	for i := 0; i < rowCount; i++ {
		r.records = append(r.records, newRouteRecord())
		r.AddItem(r.records[i], 1, 1, false)
	}

	return r
}

// Refresh causes the displayed routes to be updated.
func (r *Routes) Refresh(routes []RouteInfo) {
	r.app.QueueUpdateDraw(func() {
		r.update(routes)
	})
}

func (r *Routes) update(routes []RouteInfo) {
	for i := 0; i < len(r.records); i++ {
		if i >= len(routes) {
			r.records[i].summaryText.Clear()
			r.records[i].backupText.Clear()
			continue
		}

		route := routes[i]

		r.records[i].summaryText.SetText(route.summary())
		r.records[i].backupText.SetText(route.backupText())
		if route.BackupCount < 1 {
			r.records[i].backupText.SetTextColor(tcell.ColorRed)
		} else {
			r.records[i].backupText.SetTextColor(tcell.ColorGreen)
		}
	}
}
