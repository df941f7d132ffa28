// Package api serves the city simulation over HTTP. Each browser session
// owns exactly one city; GET endpoints observe, POST endpoints mutate.
// Every successful mutation is also pushed to WebSocket observers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/tinycity/internal/persistence"
	"github.com/talgya/tinycity/internal/sim"
)

// Server serves the simulation API.
type Server struct {
	Store   *persistence.DB
	Balance sim.Balance
	Port    int

	hub      *Hub
	sessions *sessionStore
}

// NewServer wires a server around the save store and balance table.
func NewServer(store *persistence.DB, bal sim.Balance, port int) *Server {
	return &Server{
		Store:    store,
		Balance:  bal,
		Port:     port,
		hub:      NewHub(),
		sessions: newSessionStore(bal),
	}
}

// Handler builds the route table. Split from Start so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	disasterLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	// Observation endpoints.
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/saves", s.handleListSaves)

	// Player actions.
	mux.HandleFunc("POST /api/v1/zone", s.handleZone)
	mux.HandleFunc("POST /api/v1/zone-block", s.handleZoneBlock)
	mux.HandleFunc("POST /api/v1/build", s.handleBuild)
	mux.HandleFunc("POST /api/v1/road", s.handleRoad)
	mux.HandleFunc("POST /api/v1/power-line", s.handlePowerLine)
	mux.HandleFunc("POST /api/v1/clear", s.handleClear)
	mux.HandleFunc("POST /api/v1/advance", s.handleAdvance)
	mux.HandleFunc("POST /api/v1/disaster", RateLimitMiddleware(disasterLimiter, s.handleDisaster))
	mux.HandleFunc("POST /api/v1/event", s.handleRandomEvent)
	mux.HandleFunc("POST /api/v1/reset", s.handleReset)

	// Save/load collaborator.
	mux.HandleFunc("POST /api/v1/save", s.handleSave)
	mux.HandleFunc("POST /api/v1/load", s.handleLoad)
	mux.HandleFunc("DELETE /api/v1/save", s.handleDeleteSave)

	// Observer stream.
	mux.HandleFunc("/ws", s.hub.serveWs)

	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	go s.hub.Run()

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// cellView is one grid cell prepared for rendering: category plus the
// derived, never-persisted connectivity flags.
type cellView struct {
	Category  string `json:"category"`
	Name      string `json:"name"`
	Glyph     string `json:"glyph"`
	Stage     string `json:"stage,omitempty"`
	HasRoad   bool   `json:"has_road"`
	Powered   bool   `json:"powered"`
	RoadShape string `json:"road_shape,omitempty"`
}

// stateView is the full city state pushed to clients.
type stateView struct {
	Year              int           `json:"year"`
	Money             int           `json:"money"`
	MoneyDisplay      string        `json:"money_display"`
	Population        int           `json:"population"`
	PopulationDisplay string        `json:"population_display"`
	Happiness         int           `json:"happiness"`
	Grid              [][]cellView  `json:"grid"`
	Stats             sim.CityStats `json:"stats"`
}

func buildStateView(city *sim.City) stateView {
	powered := sim.PowerMap(&city.Grid)
	grid := make([][]cellView, sim.GridSize)
	for r := 0; r < sim.GridSize; r++ {
		grid[r] = make([]cellView, sim.GridSize)
		for c := 0; c < sim.GridSize; c++ {
			cell := city.Grid[r][c]
			view := cellView{
				Category: cell.Category.String(),
				Name:     sim.DisplayName(cell.Category),
				Glyph:    sim.Glyph(cell),
				Stage:    cell.Stage.String(),
				HasRoad:  sim.HasRoadAccess(&city.Grid, r, c),
				Powered:  powered[r][c],
			}
			if cell.Category == sim.Road {
				view.RoadShape = sim.RoadShapeAt(&city.Grid, r, c).String()
			}
			grid[r][c] = view
		}
	}
	return stateView{
		Year:              city.Year,
		Money:             city.Money,
		MoneyDisplay:      "$" + humanize.Comma(int64(city.Money)),
		Population:        city.Population,
		PopulationDisplay: humanize.Comma(int64(city.Population)),
		Happiness:         city.Happiness,
		Grid:              grid,
		Stats:             city.Stats(),
	}
}

// cellRequest is the common body for single-cell actions.
type cellRequest struct {
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	ZoneType     string `json:"zone_type,omitempty"`
	BuildingType string `json:"building_type,omitempty"`
	DisasterType string `json:"disaster_type,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// mutate runs op under the session lock and, on success, responds with
// and broadcasts the updated state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(*session) error) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := op(sess); err != nil {
		writeError(w, err)
		return
	}

	view := buildStateView(sess.city)
	s.hub.Broadcast(PushMessage{Type: "state", Session: sess.id, Payload: view})
	writeJSON(w, view)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, buildStateView(sess.city))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, map[string]any{
		"counts": sim.Statistics(&sess.city.Grid),
		"stats":  sess.city.Stats(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	events := sess.city.Events
	if events == nil {
		events = []sim.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.Zone(req.Row, req.Col, req.ZoneType)
	})
}

func (s *Server) handleZoneBlock(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	if req.Width == 0 {
		req.Width = 2
	}
	if req.Height == 0 {
		req.Height = 2
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.ZoneBlock(req.Row, req.Col, req.ZoneType, req.Width, req.Height)
	})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.Build(req.Row, req.Col, req.BuildingType)
	})
}

func (s *Server) handleRoad(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.BuildRoad(req.Row, req.Col)
	})
}

func (s *Server) handlePowerLine(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.BuildPowerLine(req.Row, req.Col)
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.Clear(req.Row, req.Col)
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session) error {
		sess.city.AdvanceYear()
		return nil
	})
}

func (s *Server) handleDisaster(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		return sess.city.TriggerDisaster(req.Row, req.Col, req.DisasterType)
	})
}

func (s *Server) handleRandomEvent(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ev := sess.city.TriggerRandomEvent()
	view := buildStateView(sess.city)
	if ev != nil {
		s.hub.Broadcast(PushMessage{Type: "state", Session: sess.id, Payload: view})
	}
	writeJSON(w, map[string]any{"event": ev, "state": view})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session) error {
		sess.replace(sim.New(s.Balance))
		slog.Info("city reset", "session", sess.id)
		return nil
	})
}

type saveRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, fmt.Errorf("save name required: %w", sim.ErrInvalidType))
		return
	}
	sess := s.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.Store.SaveCity(req.Name, sess.city); err != nil {
		writeError(w, err)
		return
	}
	saves, err := s.Store.ListSaves()
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.Broadcast(PushMessage{Type: "saves", Session: sess.id, Payload: saves})
	writeJSON(w, map[string]any{"saved": req.Name, "summary": sess.city.Summary()})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, fmt.Errorf("save name required: %w", sim.ErrInvalidType))
		return
	}
	s.mutate(w, r, func(sess *session) error {
		city, err := s.Store.LoadCity(req.Name, s.Balance)
		if err != nil {
			return err
		}
		// The session's city is swapped only after a fully valid restore.
		sess.replace(city)
		return nil
	})
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, fmt.Errorf("save name required: %w", sim.ErrInvalidType))
		return
	}
	if err := s.Store.DeleteSave(name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"deleted": name})
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	saves, err := s.Store.ListSaves()
	if err != nil {
		writeError(w, err)
		return
	}
	if saves == nil {
		saves = []persistence.SaveInfo{}
	}
	writeJSON(w, saves)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps engine errors to HTTP statuses and a stable kind token
// so clients can branch without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.Is(err, sim.ErrOutOfBounds):
		status, kind = http.StatusBadRequest, "out_of_bounds"
	case errors.Is(err, sim.ErrInvalidType):
		status, kind = http.StatusBadRequest, "invalid_type"
	case errors.Is(err, sim.ErrOccupied):
		status, kind = http.StatusConflict, "occupied"
	case errors.Is(err, sim.ErrInsufficientFunds):
		status, kind = http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, sim.ErrInvalidState):
		status, kind = http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, persistence.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "kind": kind})
}
