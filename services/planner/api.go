package planner

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-Id"
	defaultLanguage = "Eng"
)

// StationLister lists the known station names in a given language.
type StationLister interface {
	StationNames(lang string) ([]string, error)
}

// API exposes the planner over HTTP.
type API struct {
	logger   *zap.Logger
	planner  *Planner
	stations StationLister

	defaults       Defaults
	legacyDefaults Defaults

	router *mux.Router
}

// NewAPI creates a new HTTP API. The defaults apply to /v1/train_route and legacyDefaults to /train_route.
func NewAPI(logger *zap.Logger, planner *Planner, stations StationLister, defaults Defaults, legacyDefaults Defaults) *API {
	api := &API{
		logger:         logger,
		planner:        planner,
		stations:       stations,
		defaults:       defaults,
		legacyDefaults: legacyDefaults,
		router:         mux.NewRouter(),
	}

	useMiddleware(api.router, logger)

	api.router.HandleFunc("/v1/train_route", api.handleRoutes).Methods(http.MethodGet)
	api.router.HandleFunc("/train_route", api.handleOptimalRoute).Methods(http.MethodGet)
	api.router.HandleFunc("/stations", api.handleStations).Methods(http.MethodGet)
	api.router.HandleFunc("/healthz", api.handleHealth).Methods(http.MethodGet)

	return api
}

// Handler returns the root handler of the API, including CORS handling.
func (a *API) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         86400,
	}).Handler(a.router)
}

func (a *API) requestLogger(w http.ResponseWriter) *zap.Logger {
	id := uuid.New().String()
	w.Header().Set(requestIDHeader, id)
	return a.logger.With(zap.String("request_id", id))
}

func (a *API) handleRoutes(w http.ResponseWriter, r *http.Request) {
	logger := a.requestLogger(w)

	q, err := ParseQuery(r.URL.Query(), a.defaults)
	if err != nil {
		a.writeError(logger, w, err)
		return
	}

	logger.Info("route request",
		zap.String("source", q.Source),
		zap.String("dest", q.Dest),
		zap.String("arrival_date", q.ArrivalDate),
		zap.String("arrival_time", q.ArrivalTime),
		zap.Duration("min_departure_gap", q.Constraints.MinDepartureGap),
		zap.Duration("max_arrival_diff", q.Constraints.MaxArrivalDiff),
	)

	routes, err := a.planner.Routes(r.Context(), logger, q)
	if err != nil {
		a.writeError(logger, w, err)
		return
	} else if len(routes) < 1 {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{"message": "No routes found."})
		return
	}

	writeJSON(w, routes)
}

func (a *API) handleOptimalRoute(w http.ResponseWriter, r *http.Request) {
	logger := a.requestLogger(w)

	q, err := ParseQuery(r.URL.Query(), a.legacyDefaults)
	if err != nil {
		a.writeError(logger, w, err)
		return
	}

	logger.Info("optimal route request",
		zap.String("source", q.Source),
		zap.String("dest", q.Dest),
		zap.String("arrival_date", q.ArrivalDate),
		zap.String("arrival_time", q.ArrivalTime),
	)

	window, err := a.planner.OptimalDeparture(r.Context(), logger, q)
	if err != nil {
		a.writeError(logger, w, err)
		return
	} else if window == nil {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{"message": "No optimal route found."})
		return
	}

	writeJSON(w, window)
}

// handleStations lists station names in the language given by lang (Eng, Heb, Rus or Arb).
// Stations with no name in that language are listed by their English name.
func (a *API) handleStations(w http.ResponseWriter, r *http.Request) {
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if len(lang) < 1 {
		lang = defaultLanguage
	}

	names, err := a.stations.StationNames(lang)
	if err != nil {
		a.logger.Debug("error listing stations",
			zap.String("lang", lang),
			zap.Error(err),
		)
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, names)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeError maps a planning error onto the response status and body.
func (a *API) writeError(logger *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingParameter):
		httpError(w, http.StatusBadRequest, "Missing required parameters")
	case errors.Is(err, ErrInvalidParameter):
		detail := strings.TrimPrefix(err.Error(), ErrInvalidParameter.Error()+": ")
		httpError(w, http.StatusBadRequest, "Invalid parameter value: "+detail)
	case errors.Is(err, ErrMalformedTimestamp):
		httpError(w, http.StatusBadRequest, "Invalid parameter value: "+err.Error())
	case errors.Is(err, ErrUnknownStation):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUpstreamFetch):
		logger.Warn("upstream failure",
			zap.Error(err),
		)
		httpError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unexpected error",
			zap.Error(err),
		)
		httpError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, msg string) {
	writeJSONStatus(w, code, map[string]string{"error": msg})
}
