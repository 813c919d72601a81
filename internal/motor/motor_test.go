package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMotorAdvanceIsDeterministicPerSeed(t *testing.T) {
	cfg := Config{DegradationSpeed: 1, NoiseLevel: 1, LoadLevel: 1}
	a := New(3, 42, cfg)
	b := New(3, 42, cfg)

	for tick := int64(0); tick < 1000; tick++ {
		oa := a.Advance(tick)
		ob := b.Advance(tick)
		require.Equal(t, ob, oa)
	}
}

func TestMotorsWithDifferentIDsDiverge(t *testing.T) {
	cfg := Config{DegradationSpeed: 1, NoiseLevel: 1, LoadLevel: 1}
	a := New(0, 42, cfg)
	b := New(1, 42, cfg)

	assert.NotEqual(t, a.State.LifespanHours, b.State.LifespanHours)
}

func TestObservationCarriesPostMaintenanceHealth(t *testing.T) {
	cfg := Config{DegradationSpeed: 1, NoiseLevel: 1, LoadLevel: 1}
	m := New(0, 7, cfg)
	m.InjectFailure()

	// Run until a rebirth event fires; the observation of that tick must
	// already report the recovered health and matching bucket. Additive
	// events (lubrication, alignment) may fire earlier and only nudge health.
	for tick := int64(0); tick < 2000; tick++ {
		obs := m.Advance(tick)
		require.Equal(t, HealthBucket(obs.Health), obs.HealthState)
		if obs.Maintenance == MaintenanceBearing || obs.Maintenance == MaintenanceAutomatic {
			assert.Equal(t, m.State.Health, obs.Health)
			assert.Greater(t, obs.Health, 0.70)
			return
		}
	}
	t.Fatal("no rebirth maintenance fired on a failed motor")
}

func TestInjectFailureForcesFailureState(t *testing.T) {
	cfg := Config{DegradationSpeed: 1, NoiseLevel: 1, LoadLevel: 1}
	m := New(0, 11, cfg)
	m.InjectFailure()

	assert.Equal(t, 0.08, m.State.Health)
	assert.Equal(t, StageFailure, m.State.Stage)
	assert.Equal(t, StateCritical, HealthBucket(m.State.Health))
}

func TestForceMaintenanceNoneIsNoop(t *testing.T) {
	cfg := Config{DegradationSpeed: 1, NoiseLevel: 1, LoadLevel: 1}
	m := New(0, 13, cfg)
	before := *m.State
	m.ForceMaintenance(MaintenanceNone)
	assert.Equal(t, before.Health, m.State.Health)
	assert.Equal(t, before.Stage, m.State.Stage)
}

func TestHoursAccumulatePerTick(t *testing.T) {
	cfg := Config{DegradationSpeed: 1, NoiseLevel: 1, LoadLevel: 1}
	m := New(0, 17, cfg)

	obs := m.Advance(0)
	assert.InDelta(t, DtHours, obs.HoursSinceMaintenance, 1e-9)

	for tick := int64(1); tick < 12; tick++ {
		obs = m.Advance(tick)
	}
	assert.InDelta(t, DtHours*12, obs.HoursSinceMaintenance, 1e-9)
}
