package motor

import (
	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// Per-tick activation probabilities of the three independent failure
// processes, and their duration ranges.
const (
	biasDriftStartProb  = 0.002
	flatlineStartProb   = 0.0005
	dropoutStartProb    = 0.001
	dropoutMissingRate  = 0.30
	flatlineMinDuration = 10
	flatlineMaxDuration = 50
	dropoutMinDuration  = 5
	dropoutMaxDuration  = 20

	biasDriftRateMin = 1e-4
	biasDriftRateMax = 5e-4
)

// channelDriftScale converts the dimensionless drift rate into each
// channel's engineering units, so an rpm sensor drifts by whole revolutions
// while a vibration sensor drifts by fractions of m/s².
var channelDriftScale = [numChannels]float64{
	ChannelTemperature: 40.0,
	ChannelVibration:   5.0,
	ChannelCurrent:     15.0,
	ChannelRPM:         400.0,
}

// biasDrift is a latched random-walk offset. Once activated it never clears
// within a lifecycle; the accumulated offset only resets on full rebirth.
type biasDrift struct {
	Active bool
	Rate   float64
	Offset float64
}

// flatline freezes the channel at the value observed when it latched, for a
// bounded number of ticks, then releases.
type flatline struct {
	Active    bool
	Remaining int
	Frozen    float64
	hasFrozen bool
}

// dropout intermittently replaces readings with "missing" for a bounded
// number of ticks.
type dropout struct {
	Active    bool
	Remaining int
}

// channelFailures carries the three independent failure machines of one
// sensor channel. They may co-occur; composition order on observation is
// bias → flatline → dropout, and dropout always wins.
type channelFailures struct {
	Bias     biasDrift
	Flatline flatline
	Dropout  dropout
}

// ImperfectionState tracks sensor failure machines for all channels of one
// motor. Sensor failures corrupt only the observation layer; the underlying
// health trajectory is never touched, keeping ground-truth labels intact.
type ImperfectionState struct {
	channels [numChannels]channelFailures
}

// NewImperfectionState returns the all-healthy sensor state.
func NewImperfectionState() ImperfectionState {
	return ImperfectionState{}
}

// ResetBias clears accumulated bias drift on all channels. Called on full
// rebirth, when instrumentation is recalibrated along with the bearing swap.
func (is *ImperfectionState) ResetBias() {
	for i := range is.channels {
		is.channels[i].Bias = biasDrift{}
	}
}

// Step advances every channel's failure machines by one tick. Activation and
// duration draws happen here, once per tick, independent of how the reading
// is later corrupted.
func (is *ImperfectionState) Step(rng *core.Rand) {
	for i := range is.channels {
		ch := &is.channels[i]

		if !ch.Bias.Active && rng.Bool(biasDriftStartProb) {
			ch.Bias.Active = true
			ch.Bias.Rate = rng.Uniform(biasDriftRateMin, biasDriftRateMax) * channelDriftScale[i]
		}
		if ch.Bias.Active {
			ch.Bias.Offset += ch.Bias.Rate * rng.Sign()
		}

		if ch.Flatline.Active {
			ch.Flatline.Remaining--
			if ch.Flatline.Remaining <= 0 {
				ch.Flatline = flatline{}
			}
		} else if rng.Bool(flatlineStartProb) {
			ch.Flatline = flatline{
				Active:    true,
				Remaining: rng.UniformInt(flatlineMinDuration, flatlineMaxDuration),
			}
		}

		if ch.Dropout.Active {
			ch.Dropout.Remaining--
			if ch.Dropout.Remaining <= 0 {
				ch.Dropout = dropout{}
			}
		} else if rng.Bool(dropoutStartProb) {
			ch.Dropout = dropout{
				Active:    true,
				Remaining: rng.UniformInt(dropoutMinDuration, dropoutMaxDuration),
			}
		}
	}
}

// Corrupt applies the active failure machines of every channel to a raw
// reading. Order per channel: bias offset, then flatline override, then
// dropout override — a dropout this tick always emits missing regardless of
// the other two.
func (is *ImperfectionState) Corrupt(raw RawReading, rng *core.Rand) Reading {
	var out Reading
	for c := Channel(0); c < numChannels; c++ {
		sample := is.corruptChannel(c, raw.channel(c), rng)
		switch c {
		case ChannelTemperature:
			out.Temperature = sample
		case ChannelVibration:
			out.Vibration = sample
		case ChannelCurrent:
			out.Current = sample
		case ChannelRPM:
			out.RPM = sample
		}
	}
	return out
}

func (is *ImperfectionState) corruptChannel(c Channel, value float64, rng *core.Rand) Sample {
	ch := &is.channels[c]

	value += ch.Bias.Offset

	if ch.Flatline.Active {
		if !ch.Flatline.hasFrozen {
			ch.Flatline.Frozen = value
			ch.Flatline.hasFrozen = true
		}
		value = ch.Flatline.Frozen
	}

	if ch.Dropout.Active && rng.Bool(dropoutMissingRate) {
		return Sample{}
	}

	return Sample{Value: value, Valid: true}
}

// BiasActive reports whether bias drift has latched on a channel. Exposed
// for status surfaces and tests.
func (is *ImperfectionState) BiasActive(c Channel) bool { return is.channels[c].Bias.Active }

// FlatlineActive reports whether a channel is currently frozen.
func (is *ImperfectionState) FlatlineActive(c Channel) bool { return is.channels[c].Flatline.Active }

// DropoutActive reports whether a channel is in an intermittent window.
func (is *ImperfectionState) DropoutActive(c Channel) bool { return is.channels[c].Dropout.Active }
