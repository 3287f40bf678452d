package widget

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rmrobinson/trainroute/services/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backupTextTest struct {
	count  int
	result string
}

var backupTextTests = []backupTextTest{
	{0, "no backup"},
	{1, "1 backup"},
	{4, "4 backups"},
}

func TestBackupText(t *testing.T) {
	for _, tt := range backupTextTests {
		t.Run(tt.result, func(t *testing.T) {
			assert.Equal(t, tt.result, RouteInfo{BackupCount: tt.count}.backupText())
		})
	}
}

func TestNewRouteInfo(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)

	route := &planner.FormattedRoute{
		RouteID:   "abc",
		StartTime: "2024-03-10T06:00:00+00:00",
		EndTime:   "2024-03-10T07:10:00+00:00",
		Trains: []planner.Train{
			{TrainNumber: json.Number("123")},
			{TrainNumber: nil},
		},
		BackupRoutes: []planner.BackupMatch{{RouteID: "def", DelayMinutes: 5}},
	}

	info, err := NewRouteInfo(route, loc)
	require.NoError(t, err)

	assert.Equal(t, "08:00", info.Departure.Format("15:04"))
	assert.Equal(t, "09:10", info.Arrival.Format("15:04"))
	assert.Equal(t, []string{"123", "?"}, info.Trains)
	assert.Equal(t, 1, info.BackupCount)
	assert.Equal(t, "08:00 → 09:10  123, ?", info.summary())
}

func TestNewRouteInfoMalformed(t *testing.T) {
	_, err := NewRouteInfo(&planner.FormattedRoute{StartTime: "soon"}, time.UTC)
	assert.True(t, errors.Is(err, planner.ErrMalformedTimestamp))
}

func TestRoutesUpdateClearsUnusedRows(t *testing.T) {
	r := NewRoutes(nil, "Routes", 3)

	dep := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	r.update([]RouteInfo{
		{Departure: dep, Arrival: dep.Add(time.Hour), Trains: []string{"1"}, BackupCount: 2},
		{Departure: dep, Arrival: dep.Add(time.Hour), Trains: []string{"2"}},
	})
	r.update([]RouteInfo{
		{Departure: dep, Arrival: dep.Add(time.Hour), Trains: []string{"3"}},
	})

	assert.Equal(t, "08:00 → 09:00  3", r.records[0].summaryText.GetText(true))
	assert.Equal(t, "no backup", r.records[0].backupText.GetText(true))
	assert.Empty(t, r.records[1].summaryText.GetText(true))
	assert.Empty(t, r.records[2].backupText.GetText(true))
}

func TestClockText(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)

	now := time.Date(2024, 7, 1, 21, 30, 5, 0, time.UTC)
	assert.Equal(t, "Tue, 02 Jul 2024\n00:30:05 IDT", clockText(now, loc))
}
