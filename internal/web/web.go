// Package web is the HTTP surface of the visualization: it serves the
// current scene as SVG, accepts input and navigation events, exposes
// the settings and the expanded calendar events.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/komapc/year-shape/internal/app"
	"github.com/komapc/year-shape/internal/config"
	"github.com/komapc/year-shape/internal/ics"
	applog "github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/model"
)

// eventsCacheTTL bounds how often an HTTP request may trigger the full
// fetch/parse/expand pipeline. The cron refresh in cmd/yearshape is
// the primary driver; this cache only shields the API.
const eventsCacheTTL = 30 * time.Second

// Server wires the app to HTTP handlers. Settings reads go through
// App.Config snapshots; the server never holds the live config.
type Server struct {
	app     *app.App
	fetcher *ics.Fetcher
	router  *mux.Router

	eventsMu    sync.RWMutex
	eventsCache map[int]*eventsEntry
}

type eventsEntry struct {
	events    []model.CalendarEvent
	updatedAt time.Time
}

// NewServer constructs the server and registers all routes.
func NewServer(a *app.App, fetcher *ics.Fetcher) *Server {
	s := &Server{
		app:         a,
		fetcher:     fetcher,
		router:      mux.NewRouter(),
		eventsCache: make(map[int]*eventsEntry),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/svg", s.handleSVG).Methods(http.MethodGet)
	s.router.HandleFunc("/view", s.handleView).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/input", s.handleInput).Methods(http.MethodPost)
	api.HandleFunc("/navigate", s.handleNavigate).Methods(http.MethodPost)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleSVG(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	s.app.EncodeSVG(w)
}

// handleView serves a minimal HTML page embedding the current SVG.
// The data-ready marker is what the capture backend waits for.
func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>year-shape</title>
<style>body{margin:0;background:#fafafa;display:flex;justify-content:center}</style>
</head>
<body>
<div data-ready="true">
`)
	s.app.EncodeSVG(w)
	fmt.Fprint(w, `</div>
</body>
</html>
`)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.GetCurrentState())
}

// inputRequest is one UI input event. Type selects which fields apply.
type inputRequest struct {
	Type  string  `json:"type"` // click|hover|wheel|pinch|pinchend|key|swipe
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta float64 `json:"delta"`
	Dist  float64 `json:"dist"`
	DX    float64 `json:"dx"`
	Key   string  `json:"key"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var in inputRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input payload")
		return
	}

	switch in.Type {
	case "click":
		id, hit := s.app.OnItemClick(in.X, in.Y)
		writeJSON(w, http.StatusOK, map[string]any{
			"hit":   hit,
			"id":    id,
			"state": s.app.GetCurrentState(),
		})
		return
	case "hover":
		s.app.OnHover(in.X, in.Y)
	case "wheel":
		s.app.OnWheel(in.Delta)
	case "pinch":
		s.app.OnPinch(in.Dist)
	case "pinchend":
		s.app.OnPinchEnd()
	case "key":
		s.app.OnKey(in.Key)
	case "swipe":
		s.app.OnSwipe(in.DX)
	default:
		writeError(w, http.StatusBadRequest, "unknown input type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": s.app.GetCurrentState()})
}

// navigateRequest drives the zoom navigator directly. Absent fields
// derive from the current state.
type navigateRequest struct {
	Level string `json:"level"`
	Month *int   `json:"month"`
	Week  *int   `json:"week"`
	Day   *int   `json:"day"`
}

func intOrDerive(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid navigate payload")
		return
	}
	if err := s.app.NavigateTo(req.Level, intOrDerive(req.Month), intOrDerive(req.Week), intOrDerive(req.Day)); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.app.GetCurrentState())
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Config())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}
	if err := s.app.ApplySettings(&cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.app.Config())
}

// eventDTO is the JSON view of a calendar event.
type eventDTO struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
	Week  int       `json:"week"`
}

type eventsResponse struct {
	Year   int        `json:"year"`
	Events []eventDTO `json:"events"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	year := s.app.GetCurrentState().Year
	if q := r.URL.Query().Get("year"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}

	events, err := s.eventsForYear(r.Context(), year)
	if err != nil {
		applog.Error("api events failed", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, eventDTO{
			Title: ev.Title,
			Start: ev.Start,
			End:   ev.End,
			Week:  model.WeekIndex(ev.Start),
		})
	}
	writeJSON(w, http.StatusOK, eventsResponse{Year: year, Events: dtos})
}

// eventsForYear serves from the TTL cache when fresh, otherwise runs
// the ICS pipeline.
func (s *Server) eventsForYear(ctx context.Context, year int) ([]model.CalendarEvent, error) {
	s.eventsMu.RLock()
	entry := s.eventsCache[year]
	s.eventsMu.RUnlock()
	if entry != nil && time.Since(entry.updatedAt) < eventsCacheTTL {
		return entry.events, nil
	}

	events, err := s.loadYear(ctx, year)
	if err != nil {
		return nil, err
	}

	s.eventsMu.Lock()
	s.eventsCache[year] = &eventsEntry{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()
	return events, nil
}

func (s *Server) loadYear(ctx context.Context, year int) ([]model.CalendarEvent, error) {
	if s.fetcher == nil {
		return nil, nil
	}
	cfg := s.app.Config()
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return s.fetcher.LoadYear(ctx, sourcesFrom(cfg), year, loc)
}

func sourcesFrom(cfg *config.Config) []ics.Source {
	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, src := range cfg.ICS {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			id = src.Name
		}
		if id == "" {
			id = src.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: src.URL})
	}
	return sources
}

// RefreshEvents reloads the displayed year's events and pushes them
// into the app. The cron scheduler in cmd/yearshape drives this.
func (s *Server) RefreshEvents(ctx context.Context) error {
	year := s.app.GetCurrentState().Year
	events, err := s.loadYear(ctx, year)
	if err != nil {
		return err
	}

	s.eventsMu.Lock()
	s.eventsCache[year] = &eventsEntry{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()

	s.app.UpdateEvents(events)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("writing JSON response failed", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
