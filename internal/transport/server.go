// Package transport is the external collaborator spec.md §1 calls out as
// outside the coordination core: an HTTP+WebSocket wrapper that exposes the
// command surface of §6 over the network and pushes tick snapshots to any
// connected observer. It owns exactly one *model.Model and every handler
// calls into it directly, so the Model's own mutex is the "single logical
// dispatcher" spec §5 requires of the external driver.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/elektrokombinacija/warehousesim/internal/model"
	"github.com/elektrokombinacija/warehousesim/internal/robot"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// Server wraps a Model behind gorilla/mux routes and a websocket hub.
type Server struct {
	m      *model.Model
	hub    *Hub
	router *mux.Router
	every  int
	ticks  int
}

// NewServer builds a Server around an already-initialized Model.
// broadcastEveryTicks controls how often a Step() push reaches websocket
// clients (1 = every tick).
func NewServer(m *model.Model, hub *Hub, broadcastEveryTicks int) *Server {
	if broadcastEveryTicks <= 0 {
		broadcastEveryTicks = 1
	}
	s := &Server{m: m, hub: hub, router: mux.NewRouter(), every: broadcastEveryTicks}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/state", s.handleGetState).Methods(http.MethodGet)
	api.HandleFunc("/step", s.handleStep).Methods(http.MethodPost)
	api.HandleFunc("/obstacles", s.handleAddObstacle).Methods(http.MethodPost)
	api.HandleFunc("/stations", s.handleAddStation).Methods(http.MethodPost)
	api.HandleFunc("/robots", s.handleAddRobot).Methods(http.MethodPost)
	api.HandleFunc("/robots/{id}/goal", s.handleChangeGoal).Methods(http.MethodPost)
	api.HandleFunc("/packages", s.handleCreatePackages).Methods(http.MethodPost)
	api.HandleFunc("/packages/{id}/assign", s.handleAssignPackage).Methods(http.MethodPost)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/healthz", s.handleHealth)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("transport: encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, warehouse.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, warehouse.ErrPlacementConflict), errors.Is(err, warehouse.ErrInvalidAssignment):
		return http.StatusConflict
	case errors.Is(err, warehouse.ErrUnreachableGoal):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.m.GetState())
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	report := s.m.Step()
	s.ticks++
	if s.hub != nil && s.ticks%s.every == 0 {
		s.hub.BroadcastSnapshot(s.m.GetState())
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAddObstacle(w http.ResponseWriter, r *http.Request) {
	var req struct{ X, Y int }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", warehouse.ErrValidation))
		return
	}
	c := warehouse.Cell{X: req.X, Y: req.Y}
	if err := s.m.AddObstacle(c); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, s.m.GetState())
}

func (s *Server) handleAddStation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X, Y         int
		ChargingRate int
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", warehouse.ErrValidation))
		return
	}
	id, err := s.m.AddChargingStation(warehouse.Cell{X: req.X, Y: req.Y}, req.ChargingRate)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]warehouse.StationID{"id": id})
}

func (s *Server) handleAddRobot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X, Y   int
		Color  string
		Idle   bool
		Config robot.Config
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", warehouse.ErrValidation))
		return
	}
	cfg := req.Config
	if req.Color != "" {
		cfg.Color = req.Color
	}
	id, err := s.m.AddRobot(warehouse.Cell{X: req.X, Y: req.Y}, cfg, req.Idle)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]warehouse.RobotID{"id": id})
}

func (s *Server) handleChangeGoal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := parseIntID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req struct{ X, Y int }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", warehouse.ErrValidation))
		return
	}
	path, err := s.m.ChangeGoal(warehouse.RobotID(id), warehouse.Cell{X: req.X, Y: req.Y})
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"path": path})
}

func (s *Server) handleCreatePackages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int
		Pools [][2]warehouse.Cell
		// Single pickup/delivery pair, for createPackage's one-off form.
		Pickup, Delivery *warehouse.Cell
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", warehouse.ErrValidation))
		return
	}
	if req.Pickup != nil && req.Delivery != nil {
		pkg, err := s.m.CreatePackage(*req.Pickup, *req.Delivery)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondJSON(w, http.StatusOK, pkg)
		return
	}
	pkgs, err := s.m.CreatePackages(req.Count, req.Pools)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, pkgs)
}

func (s *Server) handleAssignPackage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pkgID, err := parseIntID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req struct{ RobotID int }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", warehouse.ErrValidation))
		return
	}
	if err := s.m.AssignPackage(warehouse.PackageID(pkgID), warehouse.RobotID(req.RobotID)); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, s.m.ExportPathCoordinates())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket push disabled", http.StatusNotImplemented)
		return
	}
	s.hub.ServeWS(w, r, uuid.NewString())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"tick": s.m.GetState().Tick})
}

func parseIntID(raw string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, fmt.Errorf("parse id %q: %w", raw, warehouse.ErrValidation)
	}
	return id, nil
}
