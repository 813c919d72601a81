package factory

import (
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/motorfleet-simulator/internal/motor"
)

// Options configures a fleet at initialization. Validation fails fast here;
// no configuration error may surface mid-run.
type Options struct {
	NumMotors        int
	Seed             int64
	DegradationSpeed float64
	NoiseLevel       float64
	LoadLevel        float64

	// AlertThreshold is the sole alert criterion: a motor alerts exactly
	// when its health is below it. The default sits at the Warning boundary
	// so out of the box alerts cover Warning and Critical motors.
	AlertThreshold float64

	// MaxHistory bounds the retained record stream, in ticks per motor.
	MaxHistory int

	// Workers > 1 advances motors in parallel within a tick. Results are
	// identical to the sequential run because every motor draws from its own
	// sub-stream.
	Workers int
}

// Validate checks option ranges. Errors here abort initialization; nothing
// past New can fail on configuration.
func (o Options) Validate() error {
	if o.NumMotors <= 0 {
		return fmt.Errorf("motor count must be positive, got %d", o.NumMotors)
	}
	if o.DegradationSpeed <= 0 {
		return fmt.Errorf("degradation speed must be positive, got %f", o.DegradationSpeed)
	}
	if o.NoiseLevel < 0 {
		return fmt.Errorf("noise level must be non-negative, got %f", o.NoiseLevel)
	}
	if o.LoadLevel <= 0 {
		return fmt.Errorf("load level must be positive, got %f", o.LoadLevel)
	}
	if o.AlertThreshold < 0 || o.AlertThreshold > 1 {
		return fmt.Errorf("alert threshold must be in [0,1], got %f", o.AlertThreshold)
	}
	if o.MaxHistory < 0 {
		return fmt.Errorf("max history must be non-negative, got %d", o.MaxHistory)
	}
	return nil
}

// MaintenanceLogEntry records one executed maintenance event at fleet level.
type MaintenanceLogEntry struct {
	Time       int64   `json:"time"`
	MotorID    int     `json:"motor_id"`
	Type       string  `json:"type"`
	PreHealth  float64 `json:"pre_health"`
	PostHealth float64 `json:"post_health"`
}

// Simulator owns the fleet and the global clock. All methods are safe for
// concurrent use by the API layer; the per-tick motor loop itself is
// lock-free because motors are mutually isolated.
type Simulator struct {
	mu     sync.RWMutex
	opts   Options
	motors []*motor.Motor
	clock  int64

	history        []Record
	maintenanceLog []MaintenanceLogEntry
	pool           *workerpool.WorkerPool
}

// New creates a fleet of motors with freshly sampled personalities.
func New(opts Options) (*Simulator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid factory options: %w", err)
	}

	cfg := motor.Config{
		DegradationSpeed: opts.DegradationSpeed,
		NoiseLevel:       opts.NoiseLevel,
		LoadLevel:        opts.LoadLevel,
	}

	s := &Simulator{opts: opts}
	for id := 0; id < opts.NumMotors; id++ {
		s.motors = append(s.motors, motor.New(id, opts.Seed, cfg))
	}

	if opts.Workers > 1 {
		s.pool = workerpool.New(opts.Workers)
	}

	log.Info().
		Int("motors", opts.NumMotors).
		Int64("seed", opts.Seed).
		Int("workers", opts.Workers).
		Msg("Factory initialized")

	return s, nil
}

// Advance runs n ticks and returns the records they produced, one per motor
// per tick, in (tick, motor id) order. The global clock increments only
// after every motor has completed the tick, so all records of a tick share
// the same timestep.
func (s *Simulator) Advance(n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, n*len(s.motors))
	for i := 0; i < n; i++ {
		tickRecords := s.advanceTick()
		out = append(out, tickRecords...)
		s.clock++
	}

	s.history = append(s.history, out...)
	s.trimHistory()
	return out
}

func (s *Simulator) advanceTick() []Record {
	records := make([]Record, len(s.motors))
	observations := make([]motor.Observation, len(s.motors))

	if s.pool != nil {
		var wg sync.WaitGroup
		for idx, m := range s.motors {
			idx, m := idx, m
			wg.Add(1)
			s.pool.Submit(func() {
				defer wg.Done()
				observations[idx] = m.Advance(s.clock)
				records[idx] = newRecord(s.clock, m.ID, observations[idx])
			})
		}
		wg.Wait()
	} else {
		for idx, m := range s.motors {
			observations[idx] = m.Advance(s.clock)
			records[idx] = newRecord(s.clock, m.ID, observations[idx])
		}
	}

	for idx, r := range records {
		if r.MaintenanceEvent != "" {
			s.logMaintenance(r, observations[idx].PreMaintenanceHealth)
		}
	}
	return records
}

func (s *Simulator) logMaintenance(r Record, preHealth float64) {
	s.maintenanceLog = append(s.maintenanceLog, MaintenanceLogEntry{
		Time:       r.Time,
		MotorID:    r.MotorID,
		Type:       r.MaintenanceEvent,
		PreHealth:  preHealth,
		PostHealth: r.MotorHealth,
	})

	log.Debug().
		Int("motor", r.MotorID).
		Int64("tick", r.Time).
		Str("type", r.MaintenanceEvent).
		Float64("health", r.MotorHealth).
		Msg("Maintenance executed")
}

func (s *Simulator) trimHistory() {
	max := s.opts.MaxHistory * len(s.motors)
	if max > 0 && len(s.history) > max {
		excess := len(s.history) - max
		s.history = append([]Record(nil), s.history[excess:]...)
	}
}

// Clock returns the current global timestep.
func (s *Simulator) Clock() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// History returns a copy of the retained record stream.
func (s *Simulator) History() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.history...)
}

// RecentHistory returns records from the last n ticks.
func (s *Simulator) RecentHistory(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.clock - int64(n)
	out := make([]Record, 0)
	for _, r := range s.history {
		if r.Time >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

// MaintenanceLog returns a copy of all executed maintenance events.
func (s *Simulator) MaintenanceLog() []MaintenanceLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MaintenanceLogEntry(nil), s.maintenanceLog...)
}

// MotorStatus is the current snapshot of one motor for the control surface.
type MotorStatus struct {
	MotorID               int     `json:"motor_id"`
	Health                float64 `json:"health"`
	HealthState           string  `json:"health_state"`
	DegradationStage      string  `json:"degradation_stage"`
	OperatingRegime       string  `json:"operating_regime"`
	HoursSinceMaintenance float64 `json:"hours_since_maintenance"`
	LifespanHours         float64 `json:"lifespan_hours"`
	Alert                 bool    `json:"alert"`
}

// Status returns the current snapshot of every motor.
func (s *Simulator) Status() []MotorStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MotorStatus, 0, len(s.motors))
	for _, m := range s.motors {
		st := m.State
		out = append(out, MotorStatus{
			MotorID:               m.ID,
			Health:                st.Health,
			HealthState:           motor.HealthBucket(st.Health).String(),
			DegradationStage:      st.Stage.String(),
			OperatingRegime:       st.Regime.Current.String(),
			HoursSinceMaintenance: st.HoursSinceMaintenance,
			LifespanHours:         st.LifespanHours,
			Alert:                 st.Health < s.opts.AlertThreshold,
		})
	}
	return out
}

// InjectFailure forces a motor's health near zero.
func (s *Simulator) InjectFailure(motorID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMotor(motorID)
	if err != nil {
		return err
	}
	m.InjectFailure()
	log.Warn().Int("motor", motorID).Msg("Failure injected")
	return nil
}

// ForceMaintenance executes a maintenance event of the given type on one
// motor immediately.
func (s *Simulator) ForceMaintenance(motorID int, t motor.MaintenanceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMotor(motorID)
	if err != nil {
		return err
	}
	pre := m.State.Health
	m.ForceMaintenance(t)
	s.maintenanceLog = append(s.maintenanceLog, MaintenanceLogEntry{
		Time:       s.clock,
		MotorID:    motorID,
		Type:       t.String(),
		PreHealth:  pre,
		PostHealth: m.State.Health,
	})
	log.Info().Int("motor", motorID).Str("type", t.String()).Msg("Maintenance forced")
	return nil
}

// SetRuntimeConfig applies updated multipliers to all motors; takes effect on
// the next tick.
func (s *Simulator) SetRuntimeConfig(degradationSpeed, noiseLevel, loadLevel, alertThreshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opts.DegradationSpeed = degradationSpeed
	s.opts.NoiseLevel = noiseLevel
	s.opts.LoadLevel = loadLevel
	s.opts.AlertThreshold = alertThreshold
	cfg := motor.Config{
		DegradationSpeed: degradationSpeed,
		NoiseLevel:       noiseLevel,
		LoadLevel:        loadLevel,
	}
	for _, m := range s.motors {
		m.SetConfig(cfg)
	}
}

// NumMotors returns the fleet size.
func (s *Simulator) NumMotors() int {
	return len(s.motors)
}

// Stop releases the worker pool, if any.
func (s *Simulator) Stop() {
	if s.pool != nil {
		s.pool.StopWait()
	}
}

func (s *Simulator) findMotor(motorID int) (*motor.Motor, error) {
	if motorID < 0 || motorID >= len(s.motors) {
		return nil, fmt.Errorf("unknown motor id %d", motorID)
	}
	return s.motors[motorID], nil
}
