package factory

import (
	"strconv"

	"github.com/sebastiankruger/motorfleet-simulator/internal/motor"
)

// Record is one emitted telemetry row: one motor at one tick. Sensor
// channels are pointers because any of them may be missing (sensor dropout);
// MotorHealth is ground truth and is never missing.
type Record struct {
	Time                  int64    `json:"time"`
	MotorID               int      `json:"motor_id"`
	Temperature           *float64 `json:"temperature"`
	Vibration             *float64 `json:"vibration"`
	Current               *float64 `json:"current"`
	RPM                   *float64 `json:"rpm"`
	MotorHealth           float64  `json:"motor_health"`
	HealthState           string   `json:"health_state"`
	HoursSinceMaintenance float64  `json:"hours_since_maintenance"`
	DegradationStage      string   `json:"degradation_stage"`
	OperatingRegime       string   `json:"operating_regime"`
	MaintenanceEvent      string   `json:"maintenance_event,omitempty"`
}

// RecordColumns is the stable column order used by every tabular sink.
var RecordColumns = []string{
	"time",
	"motor_id",
	"temperature",
	"vibration",
	"current",
	"rpm",
	"motor_health",
	"health_state",
	"hours_since_maintenance",
	"degradation_stage",
	"operating_regime",
	"maintenance_event",
}

// Row renders the record as strings in RecordColumns order. Missing sensor
// values render as empty cells.
func (r Record) Row() []string {
	return []string{
		strconv.FormatInt(r.Time, 10),
		strconv.Itoa(r.MotorID),
		formatOptional(r.Temperature),
		formatOptional(r.Vibration),
		formatOptional(r.Current),
		formatOptional(r.RPM),
		strconv.FormatFloat(r.MotorHealth, 'f', 6, 64),
		r.HealthState,
		strconv.FormatFloat(r.HoursSinceMaintenance, 'f', 4, 64),
		r.DegradationStage,
		r.OperatingRegime,
		r.MaintenanceEvent,
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func newRecord(tick int64, motorID int, obs motor.Observation) Record {
	return Record{
		Time:                  tick,
		MotorID:               motorID,
		Temperature:           optional(obs.Reading.Temperature),
		Vibration:             optional(obs.Reading.Vibration),
		Current:               optional(obs.Reading.Current),
		RPM:                   optional(obs.Reading.RPM),
		MotorHealth:           obs.Health,
		HealthState:           obs.HealthState.String(),
		HoursSinceMaintenance: obs.HoursSinceMaintenance,
		DegradationStage:      obs.Stage.String(),
		OperatingRegime:       obs.Regime.String(),
		MaintenanceEvent:      obs.Maintenance.String(),
	}
}

func optional(s motor.Sample) *float64 {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}
