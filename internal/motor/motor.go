package motor

import (
	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// TickMinutes is the simulated wall time covered by one tick. At five
// minutes per tick the automatic-maintenance delay of 1–288 ticks spans five
// minutes to a full day.
const TickMinutes = 5

// DtHours is the tick duration in simulated hours.
const DtHours = float64(TickMinutes) / 60.0

// Motor aggregates one motor's hidden state and the models acting on it, and
// exposes the single-timestep advance that composes them. A Motor owns its
// own random sub-stream so fleet results are reproducible regardless of the
// order (or parallelism) in which motors are advanced.
type Motor struct {
	ID    int
	State *State

	rng         *core.Rand
	degradation DegradationModel
	sensors     SensorModel
	scheduler   Scheduler
}

// Config carries the runtime multipliers applied to one motor's models.
type Config struct {
	DegradationSpeed float64
	NoiseLevel       float64
	LoadLevel        float64
}

// New creates a motor with a freshly sampled personality, drawing from a
// sub-stream derived deterministically from the master seed and the id.
func New(id int, masterSeed int64, cfg Config) *Motor {
	rng := core.ForMotor(masterSeed, id)
	return &Motor{
		ID:          id,
		State:       NewState(rng),
		rng:         rng,
		degradation: DegradationModel{DegradationSpeed: cfg.DegradationSpeed},
		sensors:     SensorModel{NoiseLevel: cfg.NoiseLevel, LoadLevel: cfg.LoadLevel},
	}
}

// SetConfig updates the runtime multipliers. Takes effect on the next tick.
func (m *Motor) SetConfig(cfg Config) {
	m.degradation.DegradationSpeed = cfg.DegradationSpeed
	m.sensors.NoiseLevel = cfg.NoiseLevel
	m.sensors.LoadLevel = cfg.LoadLevel
}

// Advance runs one timestep: regime first so its multipliers are visible to
// degradation and sensing within the same tick, then degradation, sensing,
// imperfection, and maintenance. It returns the motor's observation for this
// tick.
func (m *Motor) Advance(tick int64) Observation {
	regime := m.State.Regime.Step(m.rng)
	mult := regime.Multipliers()

	m.degradation.Advance(m.State, mult, DtHours, m.rng)
	m.State.RecordHealth()

	raw := m.sensors.Observe(m.State, mult, m.rng)
	m.State.Imperfections.Step(m.rng)
	reading := m.State.Imperfections.Corrupt(raw, m.rng)

	preMaintenance := m.State.Health
	event := m.scheduler.Step(m.State, tick, m.rng)

	return Observation{
		Reading:               reading,
		Health:                m.State.Health,
		HealthState:           HealthBucket(m.State.Health),
		HoursSinceMaintenance: m.State.HoursSinceMaintenance,
		Stage:                 m.State.Stage,
		Regime:                regime,
		Maintenance:           event,
		PreMaintenanceHealth:  preMaintenance,
	}
}

// InjectFailure forces the motor to the edge of breakdown: health near zero
// with the mechanical damage that would accompany it. Used by the control
// surface to exercise alerting and automatic maintenance.
func (m *Motor) InjectFailure() {
	m.State.Health = 0.08
	m.State.Misalignment = core.Clamp(m.State.Misalignment+0.3, 0, 0.5)
	m.State.Friction *= 2.0
	m.State.Stage = StageFailure
	m.State.StageEntryHealth = m.State.Health
	m.State.RecordHealth()
}

// ForceMaintenance executes a maintenance event of the given type
// immediately, bypassing the scheduler's probabilistic pathways.
func (m *Motor) ForceMaintenance(t MaintenanceType) {
	if t == MaintenanceNone {
		return
	}
	apply(m.State, t, m.rng)
}
