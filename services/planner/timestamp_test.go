package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseTimestampTest struct {
	name   string
	input  string
	result string
	err    error
}

var parseTimestampTests = []parseTimestampTest{
	{
		"offset-less is reference zone winter time",
		"2024-03-10T08:00:00",
		"2024-03-10T06:00:00+00:00",
		nil,
	},
	{
		"offset-less is reference zone summer time",
		"2024-07-01T08:00:00",
		"2024-07-01T05:00:00+00:00",
		nil,
	},
	{
		"space separated",
		"2024-03-10 08:00:00",
		"2024-03-10T06:00:00+00:00",
		nil,
	},
	{
		"no seconds",
		"2024-03-10T08:00",
		"2024-03-10T06:00:00+00:00",
		nil,
	},
	{
		"fractional seconds are kept",
		"2024-03-10T08:00:00.5",
		"2024-03-10T06:00:00.5+00:00",
		nil,
	},
	{
		"zulu is honoured",
		"2024-03-10T08:00:00Z",
		"2024-03-10T08:00:00+00:00",
		nil,
	},
	{
		"explicit offset is honoured",
		"2024-03-10T08:00:00+03:00",
		"2024-03-10T05:00:00+00:00",
		nil,
	},
	{
		"offset without seconds",
		"2024-03-10T08:00+03:00",
		"2024-03-10T05:00:00+00:00",
		nil,
	},
	{
		"zulu without seconds",
		"2024-03-10T08:00Z",
		"2024-03-10T08:00:00+00:00",
		nil,
	},
	{
		"space separated offset without seconds",
		"2024-03-10 08:00-02:00",
		"2024-03-10T10:00:00+00:00",
		nil,
	},
	{
		"hour only offset",
		"2024-03-10T08:00:00+03",
		"2024-03-10T05:00:00+00:00",
		nil,
	},
	{
		"surrounding whitespace",
		"  2024-03-10T08:00:00Z ",
		"2024-03-10T08:00:00+00:00",
		nil,
	},
	{
		"empty",
		"",
		"",
		ErrMalformedTimestamp,
	},
	{
		"garbage",
		"tomorrow morning",
		"",
		ErrMalformedTimestamp,
	},
	{
		"invalid month",
		"2024-13-10T08:00:00",
		"",
		ErrMalformedTimestamp,
	},
}

func TestParseTimestamp(t *testing.T) {
	loc := jerusalem(t)

	for _, tt := range parseTimestampTests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input, loc)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.result, FormatUTC(ts))
		})
	}
}

type parseDeadlineTest struct {
	name   string
	date   string
	hhmm   string
	result string
	err    bool
}

var parseDeadlineTests = []parseDeadlineTest{
	{"morning", "2024-03-10", "0900", "2024-03-10T07:00:00+00:00", false},
	{"just after midnight", "2024-07-01", "0015", "2024-06-30T21:15:00+00:00", false},
	{"colon separated time", "2024-03-10", "09:00", "", true},
	{"bad hour", "2024-03-10", "2500", "", true},
	{"bad date", "10/03/2024", "0900", "", true},
}

func TestParseDeadline(t *testing.T) {
	loc := jerusalem(t)

	for _, tt := range parseDeadlineTests {
		t.Run(tt.name, func(t *testing.T) {
			deadline, err := ParseDeadline(tt.date, tt.hhmm, loc)
			if tt.err {
				assert.True(t, errors.Is(err, ErrMalformedTimestamp))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.result, FormatUTC(deadline))
		})
	}
}

func TestFormatUTCRoundTrip(t *testing.T) {
	loc := jerusalem(t)

	for _, input := range []string{
		"2024-03-10T08:00:00",
		"2024-03-10T23:59:59+05:30",
		"2024-10-27T01:30:00Z",
	} {
		t.Run(input, func(t *testing.T) {
			orig, err := ParseTimestamp(input, loc)
			require.NoError(t, err)

			reparsed, err := ParseTimestamp(FormatUTC(orig), loc)
			require.NoError(t, err)
			assert.True(t, orig.Equal(reparsed))
			_, offset := reparsed.Zone()
			assert.Equal(t, 0, offset)
		})
	}
}

func TestLoadReferenceZone(t *testing.T) {
	loc, err := LoadReferenceZone("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, loc.String())

	_, err = LoadReferenceZone("Mars/Olympus_Mons")
	assert.Error(t, err)
}
