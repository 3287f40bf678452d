package widget

import (
	"context"
	"time"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
)

// Clock is a widget to display the current time in the planner's timezone.
type Clock struct {
	*tview.TextView

	app *tview.Application

	location *time.Location
}

// NewClock creates a new clock widget using the supplied timezone.
func NewClock(app *tview.Application, location *time.Location) *Clock {
	c := &Clock{
		TextView: tview.NewTextView(),
		app:      app,
		location: location,
	}

	c.SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorLime).
		SetBorder(true).
		SetTitle(location.String())

	return c
}

// Run updates the clock until the context is cancelled.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond * 250)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.app.QueueUpdateDraw(func() {
				c.SetText(clockText(now, c.location))
			})
		}
	}
}

func clockText(now time.Time, location *time.Location) string {
	now = now.In(location)
	return now.Format("Mon, 02 Jan 2006") + "\n" + now.Format("15:04:05 MST")
}
