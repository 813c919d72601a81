package motor

// DegradationStage is one of the three ordered phases of a motor lifecycle.
// It only moves forward within a lifecycle; maintenance is the single path
// back to StageHealthy.
type DegradationStage int

const (
	// StageHealthy is the near-flat plateau covering most of the lifespan.
	StageHealthy DegradationStage = iota
	// StageWear is progressive power-law degradation (crack growth).
	StageWear
	// StageFailure is the rapid exponential tail before breakdown.
	StageFailure
)

func (s DegradationStage) String() string {
	switch s {
	case StageHealthy:
		return "STAGE_0"
	case StageWear:
		return "STAGE_1"
	case StageFailure:
		return "STAGE_2"
	default:
		return "Unknown"
	}
}

// HealthState is the categorical bucket derived from the latent health value.
// The bucket boundary for Critical (0.40) is deliberately looser than the
// automatic-maintenance execution gate (0.30): a motor is reported Critical
// early, but the scheduled automatic intervention only fires if health is
// still below the gate when its delay expires.
type HealthState int

const (
	StateHealthy HealthState = iota
	StateWarning
	StateCritical
)

func (s HealthState) String() string {
	switch s {
	case StateHealthy:
		return "Healthy"
	case StateWarning:
		return "Warning"
	case StateCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Health bucket thresholds and the stricter execution gate for automatic
// maintenance.
const (
	HealthyThreshold    = 0.70
	CriticalThreshold   = 0.40
	AutoExecuteGate     = 0.30
	AccelerationOnset   = 0.30
	AccelerationMaxGain = 0.6
)

// HealthBucket maps a health value to its categorical state.
func HealthBucket(health float64) HealthState {
	switch {
	case health >= HealthyThreshold:
		return StateHealthy
	case health >= CriticalThreshold:
		return StateWarning
	default:
		return StateCritical
	}
}

// Channel identifies one sensor channel of a motor.
type Channel int

const (
	ChannelTemperature Channel = iota
	ChannelVibration
	ChannelCurrent
	ChannelRPM
	numChannels
)

func (c Channel) String() string {
	switch c {
	case ChannelTemperature:
		return "temperature"
	case ChannelVibration:
		return "vibration"
	case ChannelCurrent:
		return "current"
	case ChannelRPM:
		return "rpm"
	default:
		return "unknown"
	}
}

// Sample is one sensor reading that may be missing (dropped by the sensor,
// not by the machine). A missing sample is expected output, never an error.
type Sample struct {
	Value float64
	Valid bool
}

// Reading holds the four sensor channels of one motor at one tick, after
// imperfections have been applied.
type Reading struct {
	Temperature Sample
	Vibration   Sample
	Current     Sample
	RPM         Sample
}

// RawReading holds the pre-imperfection sensor values.
type RawReading struct {
	Temperature float64
	Vibration   float64
	Current     float64
	RPM         float64
}

func (r RawReading) channel(c Channel) float64 {
	switch c {
	case ChannelTemperature:
		return r.Temperature
	case ChannelVibration:
		return r.Vibration
	case ChannelCurrent:
		return r.Current
	default:
		return r.RPM
	}
}

// Observation is the full per-tick output of one motor, consumed by the
// factory to build the emitted record.
type Observation struct {
	Reading               Reading
	Health                float64
	HealthState           HealthState
	HoursSinceMaintenance float64
	Stage                 DegradationStage
	Regime                Regime
	Maintenance           MaintenanceType // MaintenanceNone when no event fired

	// PreMaintenanceHealth is the health after this tick's degradation but
	// before any maintenance was applied. Equal to Health when no event
	// fired; event logs use it as the pre-event reference.
	PreMaintenanceHealth float64
}

// Sensor response windows, in ticks of trailing health history. Vibration is
// effectively instantaneous, current carries a short electrical lag, and
// temperature lags behind thermal mass. These windows produce the
// lead/lag ordering real plants show: vibration reacts first, current
// follows, temperature follows last.
const (
	WindowVibration   = 1
	WindowRPM         = 2
	WindowCurrent     = 5
	WindowTemperature = 20

	// HistoryCapacity bounds the health history ring; it must cover the
	// largest sensor window.
	HistoryCapacity = 30
)

// Empirical sensor constants (phenomenological, not first-principles).
const (
	AmbientTemperature = 25.0
	BaseFriction       = 0.05
	FrictionGain       = 0.40

	NominalRPM = 1800.0
	SlipBase   = 0.02
	SlipExtra  = 0.05

	BaseCurrent = 10.0
	CurrentGain = 1.0

	VibrationBase       = 0.5
	VibrationGain       = 5.0
	MisalignmentVibGain = 2.5
)

// Sensor clamp ranges. Out-of-range noise draws are clamped, not redrawn, so
// the noise distribution's tails are not silently truncated.
const (
	TempMin = 10.0
	TempMax = 200.0

	VibrationMin = 0.0
	VibrationMax = 50.0

	CurrentMin = 0.0
	CurrentMax = 100.0

	RPMMin = 0.0
	RPMMax = 1950.0
)
