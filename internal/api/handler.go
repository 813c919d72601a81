package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/sebastiankruger/motorfleet-simulator/internal/config"
	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
	"github.com/sebastiankruger/motorfleet-simulator/internal/motor"
)

// Handler handles REST API requests for the simulator.
type Handler struct {
	simulatorName string
	sim           *factory.Simulator
	runtime       *config.RuntimeConfig
}

// NewHandler creates the API handler for a running fleet.
func NewHandler(name string, sim *factory.Simulator, rc *config.RuntimeConfig) *Handler {
	return &Handler{
		simulatorName: name,
		sim:           sim,
		runtime:       rc,
	}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/api/motors", h.HandleMotors)
	mux.HandleFunc("/api/motors/", h.HandleMotorAction)
	mux.HandleFunc("/api/advance", h.HandleAdvance)
	mux.HandleFunc("/api/records", h.HandleRecords)
	mux.HandleFunc("/api/alerts", h.HandleAlerts)
	mux.HandleFunc("/api/maintenance-log", h.HandleMaintenanceLog)
	mux.HandleFunc("/api/config", h.HandleConfig)
}

// HandleStatus handles GET /api/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, StatusResponse{
		SimulatorName: h.simulatorName,
		Timestep:      h.sim.Clock(),
		NumMotors:     h.sim.NumMotors(),
		Motors:        h.sim.Status(),
	})
}

// HandleMotors handles GET /api/motors
func (h *Handler) HandleMotors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, MotorListResponse{Motors: h.sim.Status()})
}

// HandleMotorAction routes /api/motors/{id}[/inject-failure|/maintenance].
func (h *Handler) HandleMotorAction(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/motors/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	motorID, err := strconv.Atoi(parts[0])
	if err != nil {
		http.Error(w, "Invalid motor ID", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleMotorDetail(w, motorID)
	case len(parts) == 2 && parts[1] == "inject-failure" && r.Method == http.MethodPost:
		h.handleInjectFailure(w, motorID)
	case len(parts) == 2 && parts[1] == "maintenance" && r.Method == http.MethodPost:
		h.handleForceMaintenance(w, r, motorID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleMotorDetail(w http.ResponseWriter, motorID int) {
	statuses := h.sim.Status()
	if motorID < 0 || motorID >= len(statuses) {
		http.Error(w, "Motor not found", http.StatusNotFound)
		return
	}

	records := []factory.Record{}
	for _, rec := range h.sim.RecentHistory(100) {
		if rec.MotorID == motorID {
			records = append(records, rec)
		}
	}

	h.writeJSON(w, MotorDetailResponse{
		MotorStatus: statuses[motorID],
		Records:     records,
	})
}

func (h *Handler) handleInjectFailure(w http.ResponseWriter, motorID int) {
	if err := h.sim.InjectFailure(motorID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, ActionResponse{MotorID: motorID, Action: "inject-failure", Status: "ok"})
}

func (h *Handler) handleForceMaintenance(w http.ResponseWriter, r *http.Request, motorID int) {
	var req MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var t motor.MaintenanceType
	switch req.Type {
	case "bearing_replacement":
		t = motor.MaintenanceBearing
	case "lubrication":
		t = motor.MaintenanceLubrication
	case "alignment":
		t = motor.MaintenanceAlignment
	case "automatic_maintenance", "":
		t = motor.MaintenanceAutomatic
	default:
		http.Error(w, "Unknown maintenance type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := h.sim.ForceMaintenance(motorID, t); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, ActionResponse{MotorID: motorID, Action: "maintenance:" + t.String(), Status: "ok"})
}

// HandleAdvance handles POST /api/advance
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := AdvanceRequest{Ticks: 1}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Ticks <= 0 || req.Ticks > 10000 {
		http.Error(w, "ticks must be in [1, 10000]", http.StatusBadRequest)
		return
	}

	records := h.sim.Advance(req.Ticks)
	h.writeJSON(w, AdvanceResponse{
		Timestep: h.sim.Clock(),
		Records:  records,
	})
}

// HandleRecords handles GET /api/records?ticks=N
func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticks := 100
	if v := r.URL.Query().Get("ticks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid ticks parameter", http.StatusBadRequest)
			return
		}
		ticks = n
	}
	h.writeJSON(w, h.sim.RecentHistory(ticks))
}

// HandleAlerts handles GET /api/alerts
func (h *Handler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	alerts := []factory.MotorStatus{}
	for _, s := range h.sim.Status() {
		if s.Alert {
			alerts = append(alerts, s)
		}
	}
	h.writeJSON(w, AlertsResponse{Alerts: alerts})
}

// HandleMaintenanceLog handles GET /api/maintenance-log
func (h *Handler) HandleMaintenanceLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, MaintenanceLogResponse{Events: h.sim.MaintenanceLog()})
}

// HandleConfig handles GET and POST /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Handle CORS preflight
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeConfigResponse(w)
	case http.MethodPost:
		h.handleConfigUpdate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.DegradationSpeed != nil {
		if err := h.runtime.SetDegradationSpeed(*req.DegradationSpeed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.NoiseLevel != nil {
		if err := h.runtime.SetNoiseLevel(*req.NoiseLevel); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.LoadLevel != nil {
		if err := h.runtime.SetLoadLevel(*req.LoadLevel); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.AlertThreshold != nil {
		if err := h.runtime.SetAlertThreshold(*req.AlertThreshold); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// Push the updated multipliers into the fleet; takes effect next tick.
	snap := h.runtime.Snapshot()
	h.sim.SetRuntimeConfig(snap.DegradationSpeed, snap.NoiseLevel, snap.LoadLevel, snap.AlertThreshold)

	h.writeConfigResponse(w)
}

func (h *Handler) writeConfigResponse(w http.ResponseWriter) {
	snap := h.runtime.Snapshot()
	h.writeJSON(w, ConfigResponse{
		DegradationSpeed: snap.DegradationSpeed,
		NoiseLevel:       snap.NoiseLevel,
		LoadLevel:        snap.LoadLevel,
		AlertThreshold:   snap.AlertThreshold,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
