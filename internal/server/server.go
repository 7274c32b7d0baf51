// Package server exposes the simulation over HTTP: start/stop/status for
// cooking sessions, appliance control, device discovery, and the
// WebSocket push channel for live updates.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hammamikhairi/hearth/internal/appliance"
	"github.com/hammamikhairi/hearth/internal/broadcast"
	"github.com/hammamikhairi/hearth/internal/devices"
	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/engine"
	"github.com/hammamikhairi/hearth/internal/logger"
	"github.com/hammamikhairi/hearth/internal/status"
)

// Server is the HTTP surface of the simulation.
type Server struct {
	engine   *engine.Engine
	query    *status.Query
	sim      *appliance.Simulator
	hub      *broadcast.Hub
	registry *devices.Registry
	log      *logger.Logger
	httpSrv  *http.Server
}

// New creates a server wired to the given components.
func New(eng *engine.Engine, query *status.Query, sim *appliance.Simulator, hub *broadcast.Hub, registry *devices.Registry, log *logger.Logger) *Server {
	s := &Server{
		engine:   eng,
		query:    query,
		sim:      sim,
		hub:      hub,
		registry: registry,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("POST /v1/cook", s.handleStartCooking)
	mux.HandleFunc("GET /v1/cook/{id}", s.handleStatus)
	mux.HandleFunc("DELETE /v1/cook/{id}", s.handleStopCooking)
	mux.HandleFunc("POST /v1/oven/preheat", s.handlePreheat)
	mux.HandleFunc("POST /v1/cooker/pressure", s.handlePressure)
	mux.HandleFunc("GET /v1/devices", s.handleDevices)
	mux.HandleFunc("GET /v1/updates", s.handleUpdates)

	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route table. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.httpSrv.Addr = addr
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartCooking(w http.ResponseWriter, r *http.Request) {
	var req engine.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.Invalidf("body", "malformed JSON: %v", err))
		return
	}

	res, err := s.engine.StartCooking(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.query.Snapshot(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStopCooking(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.StopCooking(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type preheatRequest struct {
	Temperature int    `json:"temperature"`
	Mode        string `json:"mode"`
}

type pressureRequest struct {
	Pressure int `json:"pressure"`
	Duration int `json:"duration"` // minutes
}

type applianceResponse struct {
	Status          string `json:"status"`
	EstimateSeconds int    `json:"estimateSeconds"`
}

func (s *Server) handlePreheat(w http.ResponseWriter, r *http.Request) {
	var req preheatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.Invalidf("body", "malformed JSON: %v", err))
		return
	}

	estimate, err := s.sim.PreheatOven(req.Temperature, req.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, applianceResponse{
		Status:          s.sim.Oven().Status.String(),
		EstimateSeconds: estimate,
	})
}

func (s *Server) handlePressure(w http.ResponseWriter, r *http.Request) {
	var req pressureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.Invalidf("body", "malformed JSON: %v", err))
		return
	}

	estimate, err := s.sim.StartPressureCycle(req.Pressure, req.Duration)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, applianceResponse{
		Status:          s.sim.Cooker().Status.String(),
		EstimateSeconds: estimate,
	})
}

// deviceView is a discovery entry enriched with the appliance's live state.
type deviceView struct {
	devices.Device
	Status string `json:"status,omitempty"`
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	list := s.registry.List()
	views := make([]deviceView, len(list))
	for i, d := range list {
		views[i] = deviceView{Device: d}
		switch d.Type {
		case "oven":
			views[i].Status = s.sim.Oven().Status.String()
		case "autocooker":
			views[i].Status = s.sim.Cooker().Status.String()
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"devices": views})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response: %v", err)
	}
}

// writeError maps core errors onto the external protocol's error shape.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSession):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
