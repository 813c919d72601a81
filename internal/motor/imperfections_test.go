package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

func TestFlatlineFreezesFirstObservedValue(t *testing.T) {
	rng := core.NewRand(1)
	is := NewImperfectionState()
	is.channels[ChannelTemperature].Flatline = flatline{Active: true, Remaining: 10}

	first := is.Corrupt(RawReading{Temperature: 55.0, Vibration: 1, Current: 10, RPM: 1750}, rng)
	second := is.Corrupt(RawReading{Temperature: 70.0, Vibration: 1, Current: 10, RPM: 1750}, rng)

	require.True(t, first.Temperature.Valid)
	require.True(t, second.Temperature.Valid)
	assert.Equal(t, 55.0, first.Temperature.Value)
	assert.Equal(t, 55.0, second.Temperature.Value, "flatlined channel must repeat the frozen value")

	// Other channels are unaffected.
	assert.Equal(t, 1.0, second.Vibration.Value)
}

func TestFlatlineReleasesAfterDuration(t *testing.T) {
	rng := core.NewRand(2)
	is := NewImperfectionState()
	is.channels[ChannelCurrent].Flatline = flatline{Active: true, Remaining: 3}

	for i := 0; i < 3; i++ {
		require.True(t, is.FlatlineActive(ChannelCurrent))
		is.Step(rng)
	}
	assert.False(t, is.FlatlineActive(ChannelCurrent))

	out := is.Corrupt(RawReading{Current: 42.0}, rng)
	assert.Equal(t, 42.0, out.Current.Value, "released channel must track raw values again")
}

func TestDropoutEmitsMissingSamples(t *testing.T) {
	rng := core.NewRand(3)
	is := NewImperfectionState()

	missing, valid := 0, 0
	for i := 0; i < 1000; i++ {
		is.channels[ChannelRPM].Dropout = dropout{Active: true, Remaining: 100}
		out := is.Corrupt(RawReading{RPM: 1700}, rng)
		if out.RPM.Valid {
			valid++
		} else {
			missing++
		}
	}

	// ~30% of readings in a dropout window go missing; the rest pass through.
	assert.Greater(t, missing, 200)
	assert.Greater(t, valid, 500)
}

func TestBiasDriftAccumulatesAndPersists(t *testing.T) {
	rng := core.NewRand(4)
	is := NewImperfectionState()
	ch := &is.channels[ChannelVibration]
	ch.Bias = biasDrift{Active: true, Rate: 0.01}

	for i := 0; i < 500; i++ {
		is.Step(rng)
	}
	require.True(t, is.BiasActive(ChannelVibration), "bias never clears within a lifecycle")
	assert.NotZero(t, ch.Bias.Offset)

	out := is.Corrupt(RawReading{Vibration: 2.0}, rng)
	assert.InDelta(t, 2.0+ch.Bias.Offset, out.Vibration.Value, 1e-9)
}

func TestResetBiasClearsOffsetsOnly(t *testing.T) {
	is := NewImperfectionState()
	is.channels[ChannelTemperature].Bias = biasDrift{Active: true, Rate: 0.02, Offset: 3.5}
	is.channels[ChannelTemperature].Dropout = dropout{Active: true, Remaining: 5}

	is.ResetBias()

	assert.False(t, is.BiasActive(ChannelTemperature))
	assert.Zero(t, is.channels[ChannelTemperature].Bias.Offset)
	assert.True(t, is.DropoutActive(ChannelTemperature), "reset touches bias only")
}

func TestDropoutWinsOverFlatline(t *testing.T) {
	is := NewImperfectionState()
	is.channels[ChannelTemperature].Flatline = flatline{Active: true, Remaining: 10}
	is.channels[ChannelTemperature].Dropout = dropout{Active: true, Remaining: 10}

	// With the missing rate at 30%, some draws must still be missing even
	// though the flatline is latched.
	rng := core.NewRand(6)
	missing := 0
	for i := 0; i < 200; i++ {
		out := is.Corrupt(RawReading{Temperature: 60}, rng)
		if !out.Temperature.Valid {
			missing++
		}
	}
	assert.Greater(t, missing, 0)
}

func TestImperfectionsNeverTouchHealth(t *testing.T) {
	rng := core.NewRand(7)
	s := NewState(rng)
	s.Health = 0.82
	s.RecordHealth()

	// Latch every failure machine on every channel and run the observation
	// layer hard; the latent state must not move.
	for c := Channel(0); c < numChannels; c++ {
		s.Imperfections.channels[c].Bias = biasDrift{Active: true, Rate: 0.05}
		s.Imperfections.channels[c].Flatline = flatline{Active: true, Remaining: 1000}
		s.Imperfections.channels[c].Dropout = dropout{Active: true, Remaining: 1000}
	}

	sensors := SensorModel{NoiseLevel: 1, LoadLevel: 1}
	for i := 0; i < 500; i++ {
		raw := sensors.Observe(s, RegimeNormal.Multipliers(), rng)
		s.Imperfections.Step(rng)
		s.Imperfections.Corrupt(raw, rng)
	}
	assert.Equal(t, 0.82, s.Health)
}
