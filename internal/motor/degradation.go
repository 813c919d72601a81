package motor

import (
	"math"

	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// Degradation model constants. Magnitudes are per simulated hour unless noted
// and calibrated for a 5-minute tick against run-to-failure fleet data.
const (
	// Total plateau drop over the whole of stage 0.
	stage0TotalDrop = 0.06

	// Health anchor at the stage-1/stage-2 boundary. The power-law curve of
	// stage 1 is stretched between the stage-entry health and this floor.
	stage1FloorHealth = 0.45

	// Stage-2 exponential reaches ~1% of its entry health over the stage.
	stage2FoldCount = 4.6

	// Half-normal micro-damage per tick.
	microDamageStd = 0.0008

	// Shock damage: rare discrete drops whose probability grows with fatigue.
	shockBaseProb    = 0.002
	shockFatigueGain = 2.0
	shockMeanDrop    = 0.02

	// Wear accumulation per hour by stage (misalignment units).
	wearGrowthStage0 = 1e-5
	wearGrowthStage1 = 8e-5
	wearGrowthStage2 = 4e-4
)

// DegradationModel advances a motor's latent health by one timestep. It is
// stateless; all evolving quantities live in the motor State.
type DegradationModel struct {
	// DegradationSpeed is the user-facing speed multiplier (1.0 = nominal).
	DegradationSpeed float64
}

// Advance applies one tick of degradation to the state and returns the new
// health value. Regime multipliers scale both the deterministic base decay
// and the stochastic terms; the acceleration feedback below 0.3 health then
// multiplies the whole loss. Health is clamped to [0,1] and the stage ratchet
// is evaluated after clamping.
func (m DegradationModel) Advance(s *State, mult Multipliers, dtHours float64, rng *core.Rand) float64 {
	scale := mult.Degradation * s.LoadFactor * m.DegradationSpeed

	// Always-non-negative micro-damage jitter on top of the trend, plus rare
	// shock drops whose probability grows as fatigue accumulates.
	loss := m.baseDecay(s, dtHours) * scale
	loss += rng.HalfNormal(microDamageStd) * scale
	loss += m.shockDamage(s.Health, scale, rng)

	// Positive-feedback bearing failure: everything accelerates as health
	// falls below the onset, ramping the factor from 1.0 up to 1.6.
	if s.Health < AccelerationOnset {
		accel := 1.0 + AccelerationMaxGain*(AccelerationOnset-s.Health)/AccelerationOnset
		loss *= accel
	}

	s.Health = core.Clamp(s.Health-loss, 0.0, 1.0)
	s.HoursSinceMaintenance += dtHours

	m.advanceWear(s, dtHours)
	m.ratchetStage(s)

	assertInvariant(s.Health >= 0 && s.Health <= 1, "health %f outside [0,1]", s.Health)
	return s.Health
}

func (m DegradationModel) shockDamage(health, scale float64, rng *core.Rand) float64 {
	prob := shockBaseProb * (1.0 + shockFatigueGain*(1.0-health))
	if !rng.Bool(prob) {
		return 0
	}
	return rng.Exponential(shockMeanDrop) * scale
}

// baseDecay returns the stage-dependent deterministic loss for one tick,
// before any multipliers.
func (m DegradationModel) baseDecay(s *State, dtHours float64) float64 {
	switch s.Stage {
	case StageHealthy:
		return stage0TotalDrop / s.Stage0Hours * dtHours

	case StageWear:
		// Power law anchored at stage entry: cumulative drop after elapsed
		// fraction f is depth*f^b, so the per-tick loss is the increment of
		// that curve. Higher exponents concentrate the decay late.
		depth := math.Max(s.StageEntryHealth-stage1FloorHealth, 0.05)
		elapsed := s.HoursSinceMaintenance - s.Stage0Hours
		f0 := core.Clamp(elapsed/s.Stage1Hours, 0, 1)
		f1 := core.Clamp((elapsed+dtHours)/s.Stage1Hours, 0, 1)
		return depth * (math.Pow(f1, s.PowerExponent) - math.Pow(f0, s.PowerExponent))

	default: // StageFailure
		// Exponential decay whose rate grows as health approaches zero,
		// producing the characteristic rapid-failure tail.
		k := stage2FoldCount / s.Stage2Hours
		return s.Health * k * dtHours * (1.0 + 1.5*(1.0-s.Health))
	}
}

func (m DegradationModel) advanceWear(s *State, dtHours float64) {
	growth := wearGrowthStage0
	switch s.Stage {
	case StageWear:
		growth = wearGrowthStage1
	case StageFailure:
		growth = wearGrowthStage2
	}
	s.Misalignment = core.Clamp(s.Misalignment+growth*dtHours, 0, 0.5)
	s.Friction = BaseFriction + FrictionGain*(1.0-s.Health)
}

// ratchetStage advances the degradation stage once hours since maintenance
// exceed the cumulative stage durations. The ratchet is one-way within a
// lifecycle; only maintenance resets it.
func (m DegradationModel) ratchetStage(s *State) {
	prev := s.Stage
	switch {
	case s.HoursSinceMaintenance > s.Stage0Hours+s.Stage1Hours:
		s.Stage = StageFailure
	case s.HoursSinceMaintenance > s.Stage0Hours:
		if s.Stage < StageWear {
			s.Stage = StageWear
		}
	}
	if s.Stage != prev {
		s.StageEntryHealth = s.Health
	}
	assertInvariant(s.Stage >= prev, "stage regressed from %v to %v without maintenance", prev, s.Stage)
}
