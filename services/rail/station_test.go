package rail

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rmrobinson/trainroute/services/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testStationTable = `id,eng,heb,rus,arb
3700,Tel Aviv - Savidor Center,תל אביב - סבידור מרכז,Тель-Авив - Центр - Савидор,
3600,Tel Aviv - HaHagana,תל אביב - ההגנה,,
680,Jerusalem - Yitzhak Navon,ירושלים - יצחק נבון,,
2100,Haifa Center - HaShmona,חיפה מרכז - השמונה,,
,Nowhere,,,
`

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, r.Load(strings.NewReader(testStationTable)))
	return r
}

func TestRegistryLoadDefault(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, r.LoadDefault())
	assert.Greater(t, r.Len(), 50)

	station, err := r.Resolve("Tel Aviv - Savidor Center")
	require.NoError(t, err)
	assert.Equal(t, "3700", station.ID)

	for _, lang := range []string{"Eng", "Heb", "Rus", "Arb"} {
		names, err := r.StationNames(lang)
		require.NoError(t, err, lang)
		assert.Len(t, names, r.Len(), lang)
	}
	rus, err := r.StationNames("Rus")
	require.NoError(t, err)
	assert.Equal(t, "Tel Aviv - Savidor Center", rus[0])
}

func TestRegistryLoadSkipsIncompleteRows(t *testing.T) {
	r := testRegistry(t)
	assert.Equal(t, 4, r.Len())
}

func TestRegistryLoadRejectsEmptyTable(t *testing.T) {
	r := testRegistry(t)

	err := r.Load(strings.NewReader("id,eng\n,\n"))
	assert.True(t, errors.Is(err, ErrEmptyStationTable))
	assert.Equal(t, 4, r.Len())
}

type resolveTest struct {
	name  string
	query string
	id    string
	err   bool
}

var resolveTests = []resolveTest{
	{"by id", "680", "680", false},
	{"exact english name", "Jerusalem - Yitzhak Navon", "680", false},
	{"ignores case and punctuation", "jerusalem yitzhak-navon", "680", false},
	{"hebrew name", "חיפה מרכז - השמונה", "2100", false},
	{"russian name", "Тель-Авив - Центр - Савидор", "3700", false},
	{"unique substring", "navon", "680", false},
	{"ambiguous substring", "tel aviv", "", true},
	{"unknown", "Atlantis", "", true},
	{"blank", " ", "", true},
}

func TestRegistryResolve(t *testing.T) {
	r := testRegistry(t)

	for _, tt := range resolveTests {
		t.Run(tt.name, func(t *testing.T) {
			station, err := r.Resolve(tt.query)
			if tt.err {
				assert.True(t, errors.Is(err, planner.ErrUnknownStation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, station.ID)
		})
	}
}

type stationNamesTest struct {
	lang  string
	first string
	err   bool
}

var stationNamesTests = []stationNamesTest{
	{"Eng", "Tel Aviv - Savidor Center", false},
	{"Heb", "תל אביב - סבידור מרכז", false},
	{"Rus", "Тель-Авив - Центр - Савидор", false},
	{"Arb", "Tel Aviv - Savidor Center", false},
	{"eng", "", true},
	{"Klingon", "", true},
}

func TestRegistryStationNames(t *testing.T) {
	r := testRegistry(t)

	for _, tt := range stationNamesTests {
		t.Run(tt.lang, func(t *testing.T) {
			names, err := r.StationNames(tt.lang)
			if tt.err {
				assert.True(t, errors.Is(err, ErrUnknownLanguage))
				return
			}
			require.NoError(t, err)
			require.Len(t, names, 4)
			assert.Equal(t, tt.first, names[0])
		})
	}
}

func TestRegistryLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stations.csv" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("id,eng\n9999,Test Halt\n"))
	}))
	defer srv.Close()

	r := testRegistry(t)

	err := r.LoadFromURL(context.Background(), srv.URL+"/missing.csv")
	assert.Error(t, err)
	assert.Equal(t, 4, r.Len())

	require.NoError(t, r.LoadFromURL(context.Background(), srv.URL+"/stations.csv"))
	assert.Equal(t, 1, r.Len())

	station, err := r.Resolve("test halt")
	require.NoError(t, err)
	assert.Equal(t, "9999", station.ID)

	names, err := r.StationNames("Heb")
	require.NoError(t, err)
	assert.Equal(t, []string{"Test Halt"}, names)
}

func TestRegistryLoadFromURLTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := testRegistry(t)
	r.client.Timeout = time.Millisecond * 50

	start := time.Now()
	err := r.LoadFromURL(context.Background(), srv.URL+"/stations.csv")
	assert.Error(t, err)
	assert.Less(t, int64(time.Since(start)), int64(time.Second*5))
	assert.Equal(t, 4, r.Len())
}
