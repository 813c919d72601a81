package motor

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// Lifecycle sampling ranges. Lifespan and stage splits are resampled at
// creation and at every full rebirth, so no two lifecycles degrade alike.
const (
	LifespanMinHours = 1000.0
	LifespanMaxHours = 3000.0

	stage0FracMin = 0.70
	stage0FracMax = 0.85
	stage1FracMin = 0.12
	stage1FracMax = 0.22
	stage2FracMin = 0.05
	stage2FracMax = 0.10

	PowerExponentMin = 1.5
	PowerExponentMax = 3.5

	InitialHealthMin = 0.93
	InitialHealthMax = 0.95

	// stageSplitRetryCap bounds the stage-split rejection sampler. On
	// exhaustion we fall back to the nominal 75/18/7 split and keep the run
	// going; fleet continuity beats per-parameter perfection.
	stageSplitRetryCap = 100
)

// State is the full hidden state of one motor. It is owned by exactly one
// Motor and mutated only on that motor's update path.
type State struct {
	Health                float64
	Stage                 DegradationStage
	LifespanHours         float64
	Stage0Hours           float64
	Stage1Hours           float64
	Stage2Hours           float64
	PowerExponent         float64
	HoursSinceMaintenance float64

	// Health captured when the current stage was entered; anchors the
	// power-law and exponential decay curves.
	StageEntryHealth float64

	// Physical wear variables feeding the vibration/temperature equations.
	Misalignment float64
	Friction     float64

	// LoadFactor is the motor's personality load multiplier, sampled once at
	// creation (motors in a fleet are loaded unevenly).
	LoadFactor float64

	history healthHistory

	Imperfections ImperfectionState
	Regime        RegimeState
	Maintenance   MaintenanceState
}

// healthHistory is a bounded ring of recent health values backing the
// per-sensor response lag.
type healthHistory struct {
	buf   [HistoryCapacity]float64
	start int
	count int
}

func (h *healthHistory) append(v float64) {
	if h.count < HistoryCapacity {
		h.buf[(h.start+h.count)%HistoryCapacity] = v
		h.count++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % HistoryCapacity
}

// trailingMean averages the most recent window entries, or fewer when the
// history is still warming up. Never called before the first append.
func (h *healthHistory) trailingMean(window int) float64 {
	if window > h.count {
		window = h.count
	}
	sum := 0.0
	for i := 0; i < window; i++ {
		idx := (h.start + h.count - 1 - i + HistoryCapacity) % HistoryCapacity
		sum += h.buf[idx]
	}
	return sum / float64(window)
}

func (h *healthHistory) len() int { return h.count }

func (h *healthHistory) clear() {
	h.start = 0
	h.count = 0
}

// NewState creates the hidden state for one motor slot. The motor starts
// healthy but not perfect, with a freshly sampled lifecycle.
func NewState(rng *core.Rand) *State {
	s := &State{
		Health:        rng.Uniform(InitialHealthMin, InitialHealthMax),
		Stage:         StageHealthy,
		LoadFactor:    core.Clamp(rng.Gaussian(1.0, 0.1), 0.8, 1.3),
		Misalignment:  core.Clamp(rng.Gaussian(0.05, 0.03), 0.0, 0.2),
		Imperfections: NewImperfectionState(),
		Regime:        NewRegimeState(rng),
		Maintenance:   NewMaintenanceState(rng),
	}
	s.StageEntryHealth = s.Health
	s.Friction = BaseFriction
	s.ResampleLifecycle(rng)
	return s
}

// ResampleLifecycle draws a fresh lifespan, stage split, and power-law
// exponent. Called at creation and on every full rebirth (bearing
// replacement or automatic maintenance).
func (s *State) ResampleLifecycle(rng *core.Rand) {
	s.LifespanHours = rng.Uniform(LifespanMinHours, LifespanMaxHours)
	f0, f1, f2 := sampleStageSplit(rng)
	s.Stage0Hours = f0 * s.LifespanHours
	s.Stage1Hours = f1 * s.LifespanHours
	s.Stage2Hours = f2 * s.LifespanHours
	s.PowerExponent = rng.Uniform(PowerExponentMin, PowerExponentMax)
}

// sampleStageSplit draws stage fractions within their configured bands. The
// three bands do not always sum to 1 for independent draws, so we draw the
// first two and accept only when the remainder lands inside the stage-2 band,
// with a bounded retry and a safe fallback.
func sampleStageSplit(rng *core.Rand) (f0, f1, f2 float64) {
	for i := 0; i < stageSplitRetryCap; i++ {
		f0 = rng.Uniform(stage0FracMin, stage0FracMax)
		f1 = rng.Uniform(stage1FracMin, stage1FracMax)
		f2 = 1.0 - f0 - f1
		if f2 >= stage2FracMin && f2 <= stage2FracMax {
			return f0, f1, f2
		}
	}
	log.Warn().Msg("Stage split sampling exhausted retries, using nominal split")
	return 0.75, 0.18, 0.07
}

// EffectiveHealth returns the trailing mean of health over the given window,
// the per-channel lag proxy used by the sensor model.
func (s *State) EffectiveHealth(window int) float64 {
	if s.history.len() == 0 {
		return s.Health
	}
	return s.history.trailingMean(window)
}

// RecordHealth appends the post-update health to the history ring.
func (s *State) RecordHealth() {
	s.history.append(s.Health)
}

// ResetHistory clears the lag buffer and seeds it with the current health.
// Used on rebirth so sensors do not keep reporting the dead motor for the
// length of their windows.
func (s *State) ResetHistory() {
	s.history.clear()
	s.history.append(s.Health)
}

// assertInvariant panics on modeling bugs: these indicate broken update
// logic, not recoverable runtime conditions.
func assertInvariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("invariant violation: "+format, args...))
	}
}
