package motor

import (
	"github.com/sebastiankruger/motorfleet-simulator/internal/core"
)

// Per-channel measurement noise standard deviations at normal regime and
// noise level 1.0.
const (
	noiseStdTemperature = 1.5
	noiseStdVibration   = 0.12
	noiseStdCurrent     = 0.35
	noiseStdRPM         = 3.0

	// Thermal coupling: heat generated scales with load and with the
	// friction proxy derived from health and misalignment.
	thermalLoadGain     = 18.0
	thermalFrictionGain = 160.0

	// RPM noise widens as the bearing degrades.
	rpmNoiseDegradationGain = 1.0

	misalignmentSlipGain = 0.05
)

// SensorModel maps the maintained health history into the four raw sensor
// channels. Each channel is evaluated on an effective health — a trailing
// mean over that channel's window — so vibration leads, current follows, and
// temperature trails behind thermal mass.
type SensorModel struct {
	// NoiseLevel is the user-facing noise multiplier (1.0 = nominal).
	NoiseLevel float64
	// LoadLevel is the user-facing load multiplier (1.0 = nominal).
	LoadLevel float64
}

// Observe computes the raw, pre-imperfection sensor reading for the current
// state under the given regime multipliers. Out-of-range noise draws are
// clamped into each channel's physical range rather than redrawn.
func (sm SensorModel) Observe(s *State, mult Multipliers, rng *core.Rand) RawReading {
	load := s.LoadFactor * mult.Load * sm.LoadLevel
	noise := mult.Noise * sm.NoiseLevel

	hVib := s.EffectiveHealth(WindowVibration)
	hRPM := s.EffectiveHealth(WindowRPM)
	hCur := s.EffectiveHealth(WindowCurrent)
	hTemp := s.EffectiveHealth(WindowTemperature)

	// Frictional-heat proxy: friction rises as the lagged health falls and
	// as misalignment accumulates.
	friction := BaseFriction + FrictionGain*(1.0-hTemp) + 0.3*s.Misalignment
	temp := AmbientTemperature + mult.Thermal*(thermalLoadGain*load+thermalFrictionGain*friction*load)
	temp += rng.Gaussian(0, noiseStdTemperature*noise)

	// Vibration grows quadratically as bearing health declines; it is the
	// earliest failure signal.
	vib := (VibrationBase + VibrationGain*(1.0-hVib)*(1.0-hVib) + MisalignmentVibGain*s.Misalignment) *
		(0.6 + 0.4*load)
	vib += rng.Gaussian(0, noiseStdVibration*noise)

	// Mechanical resistance raises the electrical current draw.
	cur := BaseCurrent * load * (1.0 + CurrentGain*(1.0-hCur))
	cur += rng.Gaussian(0, noiseStdCurrent*noise)

	// Slip increases with degradation and misalignment; RPM noise widens as
	// the motor deteriorates.
	slip := SlipBase + SlipExtra*(1.0-hRPM) + misalignmentSlipGain*s.Misalignment
	rpm := NominalRPM * (1.0 - slip)
	rpm += rng.Gaussian(0, noiseStdRPM*(1.0+rpmNoiseDegradationGain*(1.0-hRPM))*noise)

	return RawReading{
		Temperature: core.Clamp(temp, TempMin, TempMax),
		Vibration:   core.Clamp(vib, VibrationMin, VibrationMax),
		Current:     core.Clamp(cur, CurrentMin, CurrentMax),
		RPM:         core.Clamp(rpm, RPMMin, RPMMax),
	}
}
