package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

func TestNewStateSamplesPersonalityWithinBounds(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s := NewState(core.NewRand(seed))

		assert.GreaterOrEqual(t, s.Health, InitialHealthMin)
		assert.LessOrEqual(t, s.Health, InitialHealthMax)
		assert.Equal(t, StageHealthy, s.Stage)

		assert.GreaterOrEqual(t, s.LoadFactor, 0.8)
		assert.LessOrEqual(t, s.LoadFactor, 1.3)
		assert.GreaterOrEqual(t, s.Misalignment, 0.0)
		assert.LessOrEqual(t, s.Misalignment, 0.2)
	}
}

func TestResampleLifecycleBounds(t *testing.T) {
	rng := core.NewRand(3)
	s := NewState(rng)

	for i := 0; i < 100; i++ {
		s.ResampleLifecycle(rng)

		require.GreaterOrEqual(t, s.LifespanHours, LifespanMinHours)
		require.LessOrEqual(t, s.LifespanHours, LifespanMaxHours)
		require.GreaterOrEqual(t, s.PowerExponent, PowerExponentMin)
		require.LessOrEqual(t, s.PowerExponent, PowerExponentMax)

		// Stage splits must partition the lifespan.
		total := s.Stage0Hours + s.Stage1Hours + s.Stage2Hours
		assert.InDelta(t, s.LifespanHours, total, 1e-6)

		// Fractions stay inside their bands (fallback split included).
		f0 := s.Stage0Hours / s.LifespanHours
		f1 := s.Stage1Hours / s.LifespanHours
		f2 := s.Stage2Hours / s.LifespanHours
		assert.GreaterOrEqual(t, f0, 0.70)
		assert.LessOrEqual(t, f0, 0.85)
		assert.GreaterOrEqual(t, f1, 0.12)
		assert.LessOrEqual(t, f1, 0.22)
		assert.GreaterOrEqual(t, f2, 0.05)
		assert.LessOrEqual(t, f2, 0.10)
	}
}

func TestTrailingMeanOverWindow(t *testing.T) {
	var h healthHistory
	h.append(1.0)
	h.append(0.8)
	h.append(0.6)

	assert.InDelta(t, 0.6, h.trailingMean(1), 1e-9)
	assert.InDelta(t, 0.7, h.trailingMean(2), 1e-9)
	assert.InDelta(t, 0.8, h.trailingMean(3), 1e-9)

	// Window larger than history falls back to everything recorded.
	assert.InDelta(t, 0.8, h.trailingMean(10), 1e-9)
}

func TestTrailingMeanAfterWraparound(t *testing.T) {
	var h healthHistory
	for i := 0; i < HistoryCapacity+5; i++ {
		h.append(float64(i))
	}

	assert.Equal(t, HistoryCapacity, h.len())
	last := float64(HistoryCapacity + 4)
	assert.InDelta(t, last, h.trailingMean(1), 1e-9)
	assert.InDelta(t, last-0.5, h.trailingMean(2), 1e-9)
}

func TestEffectiveHealthBeforeFirstRecord(t *testing.T) {
	s := NewState(core.NewRand(1))
	assert.Equal(t, s.Health, s.EffectiveHealth(WindowTemperature))
}

func TestResetHistorySeedsCurrentHealth(t *testing.T) {
	s := NewState(core.NewRand(1))
	for i := 0; i < 25; i++ {
		s.Health -= 0.01
		s.RecordHealth()
	}

	s.Health = 0.9
	s.ResetHistory()
	assert.Equal(t, 0.9, s.EffectiveHealth(WindowTemperature))
}
