package api

import "github.com/sebastiankruger/motorfleet-simulator/internal/factory"

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	SimulatorName string                `json:"simulatorName"`
	Timestep      int64                 `json:"timestep"`
	NumMotors     int                   `json:"numMotors"`
	Motors        []factory.MotorStatus `json:"motors"`
}

// MotorListResponse is returned by GET /api/motors
type MotorListResponse struct {
	Motors []factory.MotorStatus `json:"motors"`
}

// MotorDetailResponse is returned by GET /api/motors/{id}
type MotorDetailResponse struct {
	factory.MotorStatus
	Records []factory.Record `json:"records"`
}

// AdvanceRequest is the body of POST /api/advance
type AdvanceRequest struct {
	Ticks int `json:"ticks"`
}

// AdvanceResponse is returned by POST /api/advance
type AdvanceResponse struct {
	Timestep int64            `json:"timestep"`
	Records  []factory.Record `json:"records"`
}

// MaintenanceRequest is the body of POST /api/motors/{id}/maintenance
type MaintenanceRequest struct {
	Type string `json:"type"`
}

// ActionResponse acknowledges a control action on one motor.
type ActionResponse struct {
	MotorID int    `json:"motorId"`
	Action  string `json:"action"`
	Status  string `json:"status"`
}

// AlertsResponse is returned by GET /api/alerts
type AlertsResponse struct {
	Alerts []factory.MotorStatus `json:"alerts"`
}

// MaintenanceLogResponse is returned by GET /api/maintenance-log
type MaintenanceLogResponse struct {
	Events []factory.MaintenanceLogEntry `json:"events"`
}

// ConfigResponse is returned by GET /api/config
type ConfigResponse struct {
	DegradationSpeed float64 `json:"degradationSpeed"`
	NoiseLevel       float64 `json:"noiseLevel"`
	LoadLevel        float64 `json:"loadLevel"`
	AlertThreshold   float64 `json:"alertThreshold"`
}

// ConfigUpdateRequest is used for POST /api/config
type ConfigUpdateRequest struct {
	DegradationSpeed *float64 `json:"degradationSpeed,omitempty"`
	NoiseLevel       *float64 `json:"noiseLevel,omitempty"`
	LoadLevel        *float64 `json:"loadLevel,omitempty"`
	AlertThreshold   *float64 `json:"alertThreshold,omitempty"`
}
