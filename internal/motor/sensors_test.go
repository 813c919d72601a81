package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

func observeAveraged(s *State, sm SensorModel, rng *core.Rand, n int) RawReading {
	var sum RawReading
	for i := 0; i < n; i++ {
		r := sm.Observe(s, RegimeNormal.Multipliers(), rng)
		sum.Temperature += r.Temperature
		sum.Vibration += r.Vibration
		sum.Current += r.Current
		sum.RPM += r.RPM
	}
	return RawReading{
		Temperature: sum.Temperature / float64(n),
		Vibration:   sum.Vibration / float64(n),
		Current:     sum.Current / float64(n),
		RPM:         sum.RPM / float64(n),
	}
}

func TestReadingsStayInPhysicalRanges(t *testing.T) {
	rng := core.NewRand(1)
	s := NewState(rng)
	sm := SensorModel{NoiseLevel: 5, LoadLevel: 2} // stress the tails

	for i := 0; i < 5000; i++ {
		r := sm.Observe(s, RegimePeak.Multipliers(), rng)
		require.GreaterOrEqual(t, r.Temperature, TempMin)
		require.LessOrEqual(t, r.Temperature, TempMax)
		require.GreaterOrEqual(t, r.Vibration, VibrationMin)
		require.LessOrEqual(t, r.Vibration, VibrationMax)
		require.GreaterOrEqual(t, r.Current, CurrentMin)
		require.LessOrEqual(t, r.Current, CurrentMax)
		require.GreaterOrEqual(t, r.RPM, RPMMin)
		require.LessOrEqual(t, r.RPM, RPMMax)
	}
}

func TestDegradedMotorRunsHotterAndRougher(t *testing.T) {
	rng := core.NewRand(2)
	sm := SensorModel{NoiseLevel: 1, LoadLevel: 1}

	healthy := NewState(core.NewRand(3))
	healthy.LoadFactor = 1.0
	healthy.Misalignment = 0.05
	healthy.Health = 0.95
	healthy.ResetHistory()

	worn := NewState(core.NewRand(3))
	worn.LoadFactor = 1.0
	worn.Misalignment = 0.05
	worn.Health = 0.30
	worn.ResetHistory()

	h := observeAveraged(healthy, sm, rng, 500)
	w := observeAveraged(worn, sm, rng, 500)

	assert.Greater(t, w.Temperature, h.Temperature)
	assert.Greater(t, w.Vibration, h.Vibration)
	assert.Greater(t, w.Current, h.Current)
	assert.Less(t, w.RPM, h.RPM, "slip grows with degradation")
}

func TestIdleRegimeReadsCooler(t *testing.T) {
	rng := core.NewRand(4)
	s := NewState(core.NewRand(5))
	s.ResetHistory()
	sm := SensorModel{NoiseLevel: 1, LoadLevel: 1}

	var idle, peak float64
	for i := 0; i < 500; i++ {
		idle += sm.Observe(s, RegimeIdle.Multipliers(), rng).Temperature
		peak += sm.Observe(s, RegimePeak.Multipliers(), rng).Temperature
	}
	assert.Less(t, idle, peak)
}

// Temperature averages over a 20-tick health window, so after a sudden health
// drop it keeps reading near the old level while vibration reacts within one
// tick. This lead/lag ordering is the main realism property of the sensor
// layer.
func TestTemperatureLagsVibrationAfterHealthDrop(t *testing.T) {
	rng := core.NewRand(6)
	s := NewState(core.NewRand(7))
	s.Misalignment = 0.05
	sm := SensorModel{NoiseLevel: 0, LoadLevel: 1} // noise off to isolate the lag

	// Long steady period at high health.
	s.Health = 0.95
	for i := 0; i < HistoryCapacity; i++ {
		s.RecordHealth()
	}
	before := sm.Observe(s, RegimeNormal.Multipliers(), rng)

	// Sudden drop, one tick recorded.
	s.Health = 0.40
	s.RecordHealth()
	after := sm.Observe(s, RegimeNormal.Multipliers(), rng)

	// Let every window settle at the new level.
	for i := 0; i < HistoryCapacity; i++ {
		s.RecordHealth()
	}
	settled := sm.Observe(s, RegimeNormal.Multipliers(), rng)

	// Fraction of the full excursion reached one tick after the drop.
	vibFrac := (after.Vibration - before.Vibration) / (settled.Vibration - before.Vibration)
	tempFrac := (after.Temperature - before.Temperature) / (settled.Temperature - before.Temperature)

	assert.Greater(t, vibFrac, 0.95, "vibration responds within one tick")
	assert.Less(t, tempFrac, 0.2, "temperature trails its 20-tick window")
}

func TestNoiseLevelZeroIsDeterministic(t *testing.T) {
	rng := core.NewRand(8)
	s := NewState(core.NewRand(9))
	s.ResetHistory()
	sm := SensorModel{NoiseLevel: 0, LoadLevel: 1}

	a := sm.Observe(s, RegimeNormal.Multipliers(), rng)
	b := sm.Observe(s, RegimeNormal.Multipliers(), rng)
	assert.Equal(t, a, b)
}
