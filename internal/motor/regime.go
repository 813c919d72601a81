package motor

import (
	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// Regime is a discrete operating condition that multiplicatively scales
// load, sensor noise, thermal response, and degradation rate.
type Regime int

const (
	RegimeIdle Regime = iota
	RegimeNormal
	RegimePeak
)

func (r Regime) String() string {
	switch r {
	case RegimeIdle:
		return "idle"
	case RegimeNormal:
		return "normal"
	case RegimePeak:
		return "peak"
	default:
		return "unknown"
	}
}

// Multipliers is the per-regime scaling vector applied to the degradation
// and sensor models.
type Multipliers struct {
	Load        float64
	Noise       float64
	Thermal     float64
	Degradation float64
}

// Multipliers returns the fixed scaling vector for a regime.
func (r Regime) Multipliers() Multipliers {
	switch r {
	case RegimeIdle:
		return Multipliers{Load: 0.3, Noise: 0.5, Thermal: 0.2, Degradation: 0.5}
	case RegimePeak:
		return Multipliers{Load: 1.5, Noise: 1.4, Thermal: 1.8, Degradation: 1.6}
	default:
		return Multipliers{Load: 1.0, Noise: 1.0, Thermal: 1.0, Degradation: 1.0}
	}
}

// Regime dwell bounds in ticks; resampled at every regime entry.
const (
	DwellMinTicks = 80
	DwellMaxTicks = 120
)

// regimeTransitions is the row-stochastic Markov matrix, indexed
// [from][to] over (idle, normal, peak). Peak never drops straight to idle.
var regimeTransitions = [3][3]float64{
	RegimeIdle:   {0.7, 0.3, 0.0},
	RegimeNormal: {0.1, 0.7, 0.2},
	RegimePeak:   {0.0, 0.8, 0.2},
}

// RegimeState holds the current regime and its remaining dwell time.
type RegimeState struct {
	Current        Regime
	RemainingDwell int
}

// NewRegimeState starts a motor in the normal regime with a fresh dwell.
func NewRegimeState(rng *core.Rand) RegimeState {
	return RegimeState{
		Current:        RegimeNormal,
		RemainingDwell: rng.UniformInt(DwellMinTicks, DwellMaxTicks),
	}
}

// Step advances the regime process by one tick. The Markov transition is
// evaluated only when the current dwell expires; dwell is resampled at every
// regime entry (including self-transitions, which re-enter the same regime).
func (rs *RegimeState) Step(rng *core.Rand) Regime {
	rs.RemainingDwell--
	if rs.RemainingDwell > 0 {
		return rs.Current
	}

	row := regimeTransitions[rs.Current]
	next := Regime(rng.SelectWeighted(row[:]))
	rs.Current = next
	rs.RemainingDwell = rng.UniformInt(DwellMinTicks, DwellMaxTicks)
	return rs.Current
}
