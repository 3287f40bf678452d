package rail

import (
	"bytes"
	"context"
	_ "embed" // Embedded default station table
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rmrobinson/trainroute/services/planner"
	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a single download of a remote station table.
const DefaultFetchTimeout = time.Second * 30

//go:embed stations.csv
var defaultStations []byte

var (
	// ErrUnknownLanguage is returned if station names are requested in an unsupported language.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrEmptyStationTable is returned if a loaded station table has no usable rows.
	ErrEmptyStationTable = errors.New("station table is empty")
)

// Station is a single stop served by the rail operator.
type Station struct {
	ID  string `csv:"id"`
	Eng string `csv:"eng"`
	Heb string `csv:"heb"`
	Rus string `csv:"rus"`
	Arb string `csv:"arb"`
}

// Name returns the name of this station in the specified language.
// Stations without a translation use their English name.
func (s *Station) Name(lang string) (string, error) {
	var name string
	switch lang {
	case "Eng":
		name = s.Eng
	case "Heb":
		name = s.Heb
	case "Rus":
		name = s.Rus
	case "Arb":
		name = s.Arb
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}

	if len(name) < 1 {
		name = s.Eng
	}
	return name, nil
}

func (s *Station) names() []string {
	return []string{s.Eng, s.Heb, s.Rus, s.Arb}
}

// Registry holds the station table used to translate user supplied station names to operator IDs.
// It may be reloaded while in use.
type Registry struct {
	logger *zap.Logger
	client *http.Client

	lock     sync.RWMutex
	stations []*Station
	byID     map[string]*Station
}

// NewRegistry creates a new, empty station registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger,
		client: &http.Client{
			Timeout: DefaultFetchTimeout,
		},
		byID: map[string]*Station{},
	}
}

// LoadDefault loads the station table bundled with the binary.
func (r *Registry) LoadDefault() error {
	return r.Load(bytes.NewReader(defaultStations))
}

// LoadFromURL replaces the station table with the CSV found at the supplied URL.
// The download is abandoned after DefaultFetchTimeout, leaving the current table in place.
func (r *Registry) LoadFromURL(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("error performing request",
			zap.String("url", url),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Info("received non-OK response",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("station table request returned status %d", resp.StatusCode)
	}

	return r.Load(resp.Body)
}

// Load replaces the station table with the contents of the supplied CSV.
// The header must contain an id column and at least one name column (eng, heb, rus, arb).
func (r *Registry) Load(in io.Reader) error {
	var stations []*Station
	if err := gocsv.UnmarshalCSV(stationCSVReader(in), &stations); err != nil {
		return err
	}

	byID := map[string]*Station{}
	var valid []*Station
	for _, station := range stations {
		station.ID = strings.TrimSpace(station.ID)
		if len(station.ID) < 1 || len(station.Eng) < 1 {
			r.logger.Debug("skipping incomplete station row",
				zap.String("station_id", station.ID),
			)
			continue
		}
		byID[station.ID] = station
		valid = append(valid, station)
	}
	if len(valid) < 1 {
		return ErrEmptyStationTable
	}

	r.lock.Lock()
	r.stations = valid
	r.byID = byID
	r.lock.Unlock()

	r.logger.Info("loaded station table",
		zap.Int("station_count", len(valid)),
	)
	return nil
}

// Len is the number of stations currently loaded.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.stations)
}

// StationNames lists the name of every station in the specified language, in table order.
func (r *Registry) StationNames(lang string) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ret := []string{}
	for _, station := range r.stations {
		name, err := station.Name(lang)
		if err != nil {
			return nil, err
		}
		ret = append(ret, name)
	}
	return ret, nil
}

// Resolve finds the station referenced by the supplied ID or name.
// Names are compared ignoring case, spacing and punctuation, in any language.
// If no name matches exactly, a name uniquely containing the query is accepted.
func (r *Registry) Resolve(query string) (*Station, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	query = strings.TrimSpace(query)
	if station, ok := r.byID[query]; ok {
		return station, nil
	}

	key := normalizeStationName(query)
	if len(key) < 1 {
		return nil, fmt.Errorf("%w: %q", planner.ErrUnknownStation, query)
	}

	var partial []*Station
	for _, station := range r.stations {
		matched := false
		for _, name := range station.names() {
			candidate := normalizeStationName(name)
			if len(candidate) < 1 {
				continue
			} else if candidate == key {
				return station, nil
			} else if strings.Contains(candidate, key) {
				matched = true
			}
		}
		if matched {
			partial = append(partial, station)
		}
	}

	if len(partial) == 1 {
		return partial[0], nil
	} else if len(partial) > 1 {
		var ids []string
		for _, station := range partial {
			ids = append(ids, station.ID)
		}
		sort.Strings(ids)
		return nil, fmt.Errorf("%w: %q is ambiguous (%s)", planner.ErrUnknownStation, query, strings.Join(ids, ", "))
	}
	return nil, fmt.Errorf("%w: %q", planner.ErrUnknownStation, query)
}

var stationNameReplacer = strings.NewReplacer(" ", "", "-", "", "_", "", ".", "", "'", "", "/", "", "\"", "", "״", "", "(", "", ")", "")

func normalizeStationName(s string) string {
	return stationNameReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Station tables exported from spreadsheets frequently have ragged rows.
func stationCSVReader(in io.Reader) gocsv.CSVReader {
	csvReader := csv.NewReader(in)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	return csvReader
}
