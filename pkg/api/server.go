package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/processing/insight"
	"github.com/strathub/strathub-service/pkg/store"
)

const (
	msgSeasonNotFound = "Season not found"
	msgRaceNotFound   = "Race not found"
	msgDriverNotFound = "Driver not found"
)

type (
	Option func(s *Server)

	// Server provides the read API for the computed race documents
	Server struct {
		reader  store.Reader
		l       *log.Logger
		metrics *httpMetrics
	}

	errorResponse struct {
		Detail string `json:"detail"`
	}
	seasonsResponse struct {
		Seasons []int `json:"seasons"`
	}
	racesResponse struct {
		Season int                    `json:"season"`
		Races  []model.RaceIndexEntry `json:"races"`
	}
	teamsResponse struct {
		Season int                     `json:"season"`
		Round  int                     `json:"round"`
		Teams  []model.TeamPerformance `json:"teams"`
	}
)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.l = l
	}
}

func New(reader store.Reader, opts ...Option) *Server {
	ret := &Server{
		reader:  reader,
		l:       log.Default().Named("api"),
		metrics: newHTTPMetrics(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Handler returns the routes including request ids, metrics and CORS handling
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /api/seasons", s.listSeasons)
	mux.HandleFunc("GET /api/seasons/{year}/races", s.listRaces)
	mux.HandleFunc("GET /api/seasons/{year}/races/{round}", s.race)
	mux.HandleFunc("GET /api/seasons/{year}/races/{round}/teams", s.teams)
	mux.HandleFunc("GET /api/seasons/{year}/races/{round}/drivers/{code}", s.driver)
	mux.Handle("GET /metrics", s.metrics.handler())

	return newCORS().Handler(requestID(s.l, s.metrics.middleware(mux)))
}

// NewHTTPServer serves handler with HTTP/1.1 and cleartext HTTP/2
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Warmup loads the season list once so the first request does not pay for it
func (s *Server) Warmup(ctx context.Context) {
	if _, err := s.reader.ListSeasons(ctx); err != nil {
		s.l.Warn("warmup failed", log.ErrorField(err))
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.reader.ListSeasons(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if seasons == nil {
		seasons = []int{}
	}
	writeJSON(r.Context(), w, http.StatusOK, seasonsResponse{Seasons: seasons})
}

func (s *Server) listRaces(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	races, err := s.reader.ListRaces(r.Context(), year)
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(races) == 0) {
		writeError(r.Context(), w, http.StatusNotFound, msgSeasonNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, racesResponse{Season: year, Races: races})
}

func (s *Server) race(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadRace(w, r)
	if !ok {
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, doc)
}

func (s *Server) teams(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadRace(w, r)
	if !ok {
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, teamsResponse{
		Season: doc.Season,
		Round:  doc.Round,
		Teams:  insight.TeamPerformance(doc),
	})
}

func (s *Server) driver(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadRace(w, r)
	if !ok {
		return
	}
	entry, found := insight.Driver(doc, strings.ToUpper(r.PathValue("code")))
	if !found {
		writeError(r.Context(), w, http.StatusNotFound, msgDriverNotFound)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, entry)
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Server) loadRace(
	w http.ResponseWriter,
	r *http.Request,
) (*model.RaceAnalyticsDocument, bool) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return nil, false
	}
	round, ok := pathInt(w, r, "round")
	if !ok {
		return nil, false
	}
	doc, err := s.reader.LoadRace(r.Context(), model.RaceID{Season: year, Round: round})
	if errors.Is(err, store.ErrNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, msgRaceNotFound)
		return nil, false
	}
	if err != nil {
		s.internalError(w, r, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.GetFromContext(r.Context()).Error("request failed",
		log.String("path", r.URL.Path), log.ErrorField(err))
	writeError(r.Context(), w, http.StatusInternalServerError, "internal error")
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	writeJSON(ctx, w, status, errorResponse{Detail: detail})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetFromContext(ctx).Warn("could not write response", log.ErrorField(err))
	}
}

func newCORS() *cors.Cors {
	// the API is read only, every origin may use it
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})
}
