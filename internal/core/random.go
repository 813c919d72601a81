package core

import (
	"math"
	"math/rand"
)

// motorStreamStride separates per-motor sub-streams in seed space. Any odd
// constant works; this one is the 64-bit golden ratio so consecutive motor
// ids never collide with simple seed arithmetic done elsewhere.
const motorStreamStride uint64 = 0x9E3779B97F4A7C15

// Rand is the seeded stochastic source shared by all simulation components.
// It wraps math/rand so the whole run is reproducible under a fixed master
// seed. Each motor must own its own sub-stream (see ForMotor) so that
// per-motor state evolves identically regardless of fleet size or the order
// in which motors are advanced within a tick.
type Rand struct {
	rng *rand.Rand
}

// NewRand creates a stream seeded with the given master seed.
func NewRand(seed int64) *Rand {
	return &Rand{rng: rand.New(rand.NewSource(seed))}
}

// ForMotor derives an independent sub-stream for one motor, deterministically
// from the master seed and the motor id.
func ForMotor(masterSeed int64, motorID int) *Rand {
	sub := uint64(masterSeed) ^ (uint64(motorID+1) * motorStreamStride)
	return NewRand(int64(sub))
}

// Gaussian returns a draw from N(mean, stdDev).
func (r *Rand) Gaussian(mean, stdDev float64) float64 {
	return mean + r.rng.NormFloat64()*stdDev
}

// HalfNormal returns |N(0, stdDev)|: always non-negative, concentrated near
// zero. Used for micro-damage so extra wear can never be negative.
func (r *Rand) HalfNormal(stdDev float64) float64 {
	return math.Abs(r.rng.NormFloat64()) * stdDev
}

// Exponential returns a draw from an exponential distribution with the given
// mean. Used for rare shock-damage magnitudes.
func (r *Rand) Exponential(mean float64) float64 {
	return r.rng.ExpFloat64() * mean
}

// Uniform returns a uniform random value in [min, max].
func (r *Rand) Uniform(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// UniformInt returns a uniform random integer in [min, max].
func (r *Rand) UniformInt(min, max int) int {
	return min + r.rng.Intn(max-min+1)
}

// Bool returns true with the given probability.
func (r *Rand) Bool(probability float64) bool {
	return r.rng.Float64() < probability
}

// Sign returns +1 or -1 with equal probability.
func (r *Rand) Sign() float64 {
	if r.rng.Intn(2) == 0 {
		return 1
	}
	return -1
}

// SelectWeighted selects an index from a slice of weights.
func (r *Rand) SelectWeighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	x := r.rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if x <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// ClampPositive ensures a value is non-negative.
func ClampPositive(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

// Clamp ensures a value is within bounds.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
