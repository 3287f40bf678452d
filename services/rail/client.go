package rail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmrobinson/trainroute/services/planner"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Israel Rail API gateway.
	DefaultBaseURL = "https://israelrail.azurefd.net/rjpa-prod/api/v1"

	searchPath      = "/timetable/searchTrainLuzForDateTime"
	apiKeyHeader    = "ocp-apim-subscription-key"
	queryDateFormat = "2006-01-02"
	queryHourFormat = "15:04"
)

type searchResponse struct {
	Result struct {
		Travels []travel `json:"travels"`
	} `json:"result"`
}

type travel struct {
	DepartureTime string                   `json:"departureTime"`
	ArrivalTime   string                   `json:"arrivalTime"`
	Trains        []map[string]interface{} `json:"trains"`
}

// Client queries the rail operator's timetable search for trips between two stations.
type Client struct {
	logger   *zap.Logger
	stations *Registry
	client   *http.Client

	baseURL string
	apiKey  string
}

// NewClient creates a new timetable client. Station names are translated using the supplied registry.
func NewClient(logger *zap.Logger, stations *Registry, baseURL string, apiKey string, timeout time.Duration) *Client {
	if len(baseURL) < 1 {
		baseURL = DefaultBaseURL
	}

	return &Client{
		logger:   logger,
		stations: stations,
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// FetchTrips retrieves the trips leaving source for dest from the specified time onwards.
// The from time is sent as wall clock time in its own location, which should be the operator's timezone.
func (c *Client) FetchTrips(ctx context.Context, source string, dest string, from time.Time) ([]planner.RawTrip, error) {
	src, err := c.stations.Resolve(source)
	if err != nil {
		return nil, err
	}
	dst, err := c.stations.Resolve(dest)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("fromStation", src.ID)
	params.Set("toStation", dst.ID)
	params.Set("date", from.Format(queryDateFormat))
	params.Set("hour", from.Format(queryHourFormat))
	params.Set("scheduleType", "1")
	params.Set("systemType", "2")
	params.Set("languageId", "English")

	path := c.baseURL + searchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		c.logger.Warn("error creating request",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if len(c.apiKey) > 0 {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	c.logger.Debug("searching timetable",
		zap.String("from_station", src.ID),
		zap.String("to_station", dst.ID),
		zap.String("date", params.Get("date")),
		zap.String("hour", params.Get("hour")),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("error performing request",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s", planner.ErrUpstreamFetch, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("received non-OK response",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", planner.ErrUpstreamFetch, resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var body searchResponse
	if err := decoder.Decode(&body); err != nil {
		c.logger.Warn("error decoding response",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s", planner.ErrUpstreamFetch, err.Error())
	}

	trips := make([]planner.RawTrip, 0, len(body.Result.Travels))
	for _, t := range body.Result.Travels {
		trips = append(trips, t.toRawTrip())
	}

	c.logger.Debug("retrieved trips",
		zap.Int("trip_count", len(trips)),
	)
	return trips, nil
}

func (t travel) toRawTrip() planner.RawTrip {
	trip := planner.RawTrip{
		StartTime: t.DepartureTime,
		EndTime:   t.ArrivalTime,
		Trains:    make([]planner.RawLeg, 0, len(t.Trains)),
	}

	for _, train := range t.Trains {
		dep, _ := train["departureTime"].(string)
		arr, _ := train["arrivalTime"].(string)

		trip.Trains = append(trip.Trains, planner.RawLeg{
			"departure": dep,
			"arrival":   arr,
			"data":      train,
		})
	}
	return trip
}
