package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Status represents the health status response
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Timestep  int64             `json:"timestep,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Handler serves the liveness and readiness probes. Readiness covers the
// OPC UA endpoint and the simulation loop; either can lag behind process
// start, so both are flipped by the owning goroutines.
type Handler struct {
	opcuaReady atomic.Bool
	simRunning atomic.Bool
	timestep   atomic.Int64
	startTime  time.Time
}

// NewHandler creates a new health handler
func NewHandler() *Handler {
	return &Handler{
		startTime: time.Now(),
	}
}

// SetOPCUAReady sets the OPC UA server readiness status
func (h *Handler) SetOPCUAReady(ready bool) {
	h.opcuaReady.Store(ready)
}

// SetSimulationRunning marks the simulation loop as started or stopped.
func (h *Handler) SetSimulationRunning(running bool) {
	h.simRunning.Store(running)
}

// ReportTimestep records the latest simulation timestep for probes.
func (h *Handler) ReportTimestep(t int64) {
	h.timestep.Store(t)
}

// HandleLive handles the liveness probe
// Returns 200 if the application is running
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// HandleReady handles the readiness probe
// Returns 200 if the simulator is ready to serve traffic
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	if h.opcuaReady.Load() {
		checks["opcua_server"] = "healthy"
	} else {
		checks["opcua_server"] = "not_ready"
		allHealthy = false
	}

	if h.simRunning.Load() {
		checks["simulation_loop"] = "running"
	} else {
		checks["simulation_loop"] = "not_started"
		allHealthy = false
	}

	// Give 5 seconds for startup
	uptime := time.Since(h.startTime)
	if uptime > 5*time.Second {
		checks["startup"] = "complete"
	} else {
		checks["startup"] = "in_progress"
		allHealthy = false
	}

	status := Status{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Timestep:  h.timestep.Load(),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")

	if allHealthy {
		status.Status = "ready"
		w.WriteHeader(http.StatusOK)
	} else {
		status.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(status)
}

// HandleHealth handles the combined health endpoint (for Docker HEALTHCHECK)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReady(w, r)
}
