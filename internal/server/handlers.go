package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/monitor"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	Uptime   string     `json:"uptime"`
	Paused   bool       `json:"paused"`
	LastPoll *time.Time `json:"last_poll,omitempty"`
}

// DashboardResponse is the body of GET /api/v1/dashboard
type DashboardResponse struct {
	Paused    bool              `json:"paused"`
	LastError string            `json:"last_error,omitempty"`
	Snapshot  *monitor.Snapshot `json:"snapshot"`
}

// GateResponse reports the gate state after pause or resume
type GateResponse struct {
	Paused  bool `json:"paused"`
	Changed bool `json:"changed"`
}

// ErrorResponse is the body of every error
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.startTime).Truncate(time.Second).String(),
		Paused:  s.gate.Paused(),
	}
	if snap := s.poller.Snapshot(); snap != nil {
		t := snap.TakenAt
		resp.LastPoll = &t
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.poller.Snapshot()
	resp := DashboardResponse{
		Paused:   s.gate.Paused(),
		Snapshot: snap,
	}
	if err := s.poller.LastError(); err != nil {
		resp.LastError = bulkapi.UserMessage(err)
	}
	if snap == nil {
		s.sendJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.poller.PollOnce(r.Context())
	if errors.Is(err, monitor.ErrPaused) {
		s.sendError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.sendError(w, http.StatusBadGateway, bulkapi.UserMessage(err))
		return
	}
	s.sendJSON(w, http.StatusOK, DashboardResponse{Paused: s.gate.Paused(), Snapshot: snap})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	hold := r.URL.Query().Get("hold")
	changed, err := s.gate.Pause(r.Context(), hold)
	if err != nil {
		s.sendError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.logger.Info("polling paused by request", "hold", hold, "changed", changed)
	s.sendJSON(w, http.StatusOK, GateResponse{Paused: s.gate.Paused(), Changed: changed})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	hold := r.URL.Query().Get("hold")
	changed := s.gate.Resume(hold)
	s.logger.Info("polling resumed by request", "hold", hold, "changed", changed)
	s.sendJSON(w, http.StatusOK, GateResponse{Paused: s.gate.Paused(), Changed: changed})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}
