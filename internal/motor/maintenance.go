package motor

import (
	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// MaintenanceType is a closed variant over the intervention kinds. Every
// type's effect is spelled out in apply below, so adding a kind is a
// compile-time-checked change rather than string matching.
type MaintenanceType int

const (
	MaintenanceNone MaintenanceType = iota
	MaintenanceBearing
	MaintenanceLubrication
	MaintenanceAlignment
	MaintenanceAutomatic
)

func (t MaintenanceType) String() string {
	switch t {
	case MaintenanceBearing:
		return "bearing_replacement"
	case MaintenanceLubrication:
		return "lubrication"
	case MaintenanceAlignment:
		return "alignment"
	case MaintenanceAutomatic:
		return "automatic_maintenance"
	default:
		return ""
	}
}

// Scheduler parameters.
const (
	// Automatic maintenance: scheduled with a uniform delay when the health
	// bucket first flips into Critical, executed only if health is still
	// below the gate when the delay expires.
	AutoDelayMinTicks = 1
	AutoDelayMaxTicks = 288

	// Reactive bearing replacement fires probabilistically once health is
	// deep in the critical band.
	ReactiveThreshold   = 0.25
	ReactiveProbPerTick = 0.15

	// Scheduled lubrication runs in a short window around a periodic mark;
	// the period carries per-lifecycle jitter.
	ScheduledIntervalTicks = 500
	ScheduledJitterTicks   = 100
	ScheduledWindowTicks   = 10
	ScheduledProbPerTick   = 0.10

	// Within a scheduled slot, occasionally the crew corrects alignment
	// instead of lubricating.
	scheduledAlignmentShare = 0.25

	// Lubrication and alignment bump health additively but never back to a
	// factory-perfect 1.0.
	postMaintenanceHealthCap = 0.99
)

// MaintenanceState is the per-motor scheduler state. The state machine is
// normal-operation → critical-entered → maintenance-scheduled →
// maintenance-executed → normal-operation.
type MaintenanceState struct {
	// PreviousBucket detects the transition into Critical; only the
	// transition schedules automatic maintenance, not the level.
	PreviousBucket HealthState

	// AutoPending is true while exactly one automatic event is scheduled.
	AutoPending bool
	AutoDueTick int64

	// ScheduledPeriod is this lifecycle's jittered lubrication period.
	ScheduledPeriod int
}

// NewMaintenanceState initializes the scheduler for a fresh motor.
func NewMaintenanceState(rng *core.Rand) MaintenanceState {
	return MaintenanceState{
		PreviousBucket:  StateHealthy,
		ScheduledPeriod: ScheduledIntervalTicks + rng.UniformInt(-ScheduledJitterTicks, ScheduledJitterTicks),
	}
}

// Scheduler decides and executes maintenance events. Like the degradation
// model it is stateless; evolving state lives in MaintenanceState.
type Scheduler struct{}

// Step runs the per-tick maintenance decision for one motor and executes at
// most one event. Automatic maintenance takes labeling priority over the
// reactive and scheduled pathways when several are satisfied at once.
func (Scheduler) Step(s *State, tick int64, rng *core.Rand) MaintenanceType {
	ms := &s.Maintenance
	bucket := HealthBucket(s.Health)

	// Transition into Critical arms the automatic pathway, with at most one
	// pending event per motor.
	if bucket == StateCritical && ms.PreviousBucket != StateCritical && !ms.AutoPending {
		delay := int64(rng.UniformInt(AutoDelayMinTicks, AutoDelayMaxTicks))
		ms.AutoPending = true
		ms.AutoDueTick = tick + delay
	}
	ms.PreviousBucket = bucket

	executed := MaintenanceNone

	// The automatic pathway resolves first. A due event executes only if
	// health is still below the gate; if another intervention recovered the
	// motor meanwhile, the pending event is dropped without executing — and a
	// dropped event must not shadow the other pathways this tick.
	if ms.AutoPending && tick >= ms.AutoDueTick {
		ms.AutoPending = false
		if s.Health < AutoExecuteGate {
			executed = MaintenanceAutomatic
		}
	}

	if executed == MaintenanceNone {
		switch {
		case s.Health < ReactiveThreshold && rng.Bool(ReactiveProbPerTick):
			executed = MaintenanceBearing

		case int(tick)%ms.ScheduledPeriod < ScheduledWindowTicks && rng.Bool(ScheduledProbPerTick):
			if rng.Bool(scheduledAlignmentShare) {
				executed = MaintenanceAlignment
			} else {
				executed = MaintenanceLubrication
			}
		}
	}

	if executed != MaintenanceNone {
		apply(s, executed, rng)
	}
	return executed
}

// apply is the closed effect table: health delta and reset scope per type.
func apply(s *State, t MaintenanceType, rng *core.Rand) {
	pre := s.Health

	switch t {
	case MaintenanceBearing:
		// Full rebirth: new bearing, recalibrated rig, fresh lifecycle.
		s.Health = rng.Uniform(0.75, 0.90)
		s.Misalignment *= 0.3
		s.Friction = BaseFriction * 1.1
		rebirth(s, rng)

	case MaintenanceAutomatic:
		// Planned intervention lands a near-new machine.
		s.Health = rng.Uniform(InitialHealthMin, InitialHealthMax)
		s.Misalignment *= 0.3
		s.Friction = BaseFriction * 1.1
		rebirth(s, rng)

	case MaintenanceLubrication:
		s.Health = core.Clamp(s.Health+0.10, 0, postMaintenanceHealthCap)
		s.Friction *= 0.8
		// Additive interventions must never reduce health. Rebirths land in a
		// fixed band instead, which may be below a forced pre-event health.
		assertInvariant(s.Health >= pre, "maintenance %v lowered health %f -> %f", t, pre, s.Health)

	case MaintenanceAlignment:
		s.Health = core.Clamp(s.Health+0.05, 0, postMaintenanceHealthCap)
		s.Misalignment *= 0.5
		assertInvariant(s.Health >= pre, "maintenance %v lowered health %f -> %f", t, pre, s.Health)
	}
}

// rebirth resamples the lifecycle-derived parameters in place, leaving motor
// identity and accumulated telemetry untouched.
func rebirth(s *State, rng *core.Rand) {
	s.Stage = StageHealthy
	s.StageEntryHealth = s.Health
	s.HoursSinceMaintenance = 0
	s.ResampleLifecycle(rng)
	s.Maintenance.ScheduledPeriod = ScheduledIntervalTicks +
		rng.UniformInt(-ScheduledJitterTicks, ScheduledJitterTicks)
	s.Maintenance.AutoPending = false
	s.Imperfections.ResetBias()
	s.ResetHistory()
}
