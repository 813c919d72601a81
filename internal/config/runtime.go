package config

import (
	"fmt"
	"sync"
)

// RuntimeConfig holds the simulation multipliers that can be changed while
// the simulator is running. All methods are thread-safe.
type RuntimeConfig struct {
	mu               sync.RWMutex
	degradationSpeed float64 // 0.01 - 100.0 (default from static config)
	noiseLevel       float64 // 0.0 - 10.0
	loadLevel        float64 // 0.1 - 5.0
	alertThreshold   float64 // 0.0 - 1.0
}

// NewRuntimeConfig creates a RuntimeConfig seeded from the static Config.
func NewRuntimeConfig(cfg *Config) *RuntimeConfig {
	return &RuntimeConfig{
		degradationSpeed: cfg.DegradationSpeed,
		noiseLevel:       cfg.NoiseLevel,
		loadLevel:        cfg.LoadLevel,
		alertThreshold:   cfg.AlertThreshold,
	}
}

// GetDegradationSpeed returns the current degradation speed multiplier.
func (rc *RuntimeConfig) GetDegradationSpeed() float64 {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.degradationSpeed
}

// GetNoiseLevel returns the current sensor noise multiplier.
func (rc *RuntimeConfig) GetNoiseLevel() float64 {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.noiseLevel
}

// GetLoadLevel returns the current load multiplier.
func (rc *RuntimeConfig) GetLoadLevel() float64 {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.loadLevel
}

// GetAlertThreshold returns the current alert threshold.
func (rc *RuntimeConfig) GetAlertThreshold() float64 {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.alertThreshold
}

// SetDegradationSpeed sets the degradation speed multiplier.
// Valid range: 0.01 - 100.0
func (rc *RuntimeConfig) SetDegradationSpeed(speed float64) error {
	if speed < 0.01 || speed > 100.0 {
		return fmt.Errorf("degradation speed must be between 0.01 and 100.0, got %f", speed)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.degradationSpeed = speed
	return nil
}

// SetNoiseLevel sets the sensor noise multiplier.
// Valid range: 0.0 - 10.0
func (rc *RuntimeConfig) SetNoiseLevel(level float64) error {
	if level < 0.0 || level > 10.0 {
		return fmt.Errorf("noise level must be between 0.0 and 10.0, got %f", level)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.noiseLevel = level
	return nil
}

// SetLoadLevel sets the load multiplier.
// Valid range: 0.1 - 5.0
func (rc *RuntimeConfig) SetLoadLevel(level float64) error {
	if level < 0.1 || level > 5.0 {
		return fmt.Errorf("load level must be between 0.1 and 5.0, got %f", level)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.loadLevel = level
	return nil
}

// SetAlertThreshold sets the health level below which motors are flagged.
// Valid range: 0.0 - 1.0
func (rc *RuntimeConfig) SetAlertThreshold(threshold float64) error {
	if threshold < 0.0 || threshold > 1.0 {
		return fmt.Errorf("alert threshold must be between 0.0 and 1.0, got %f", threshold)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.alertThreshold = threshold
	return nil
}

// RuntimeConfigSnapshot is a point-in-time copy of all runtime values.
type RuntimeConfigSnapshot struct {
	DegradationSpeed float64 `json:"degradation_speed"`
	NoiseLevel       float64 `json:"noise_level"`
	LoadLevel        float64 `json:"load_level"`
	AlertThreshold   float64 `json:"alert_threshold"`
}

// Snapshot returns a point-in-time copy of all runtime config values.
func (rc *RuntimeConfig) Snapshot() RuntimeConfigSnapshot {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return RuntimeConfigSnapshot{
		DegradationSpeed: rc.degradationSpeed,
		NoiseLevel:       rc.noiseLevel,
		LoadLevel:        rc.loadLevel,
		AlertThreshold:   rc.alertThreshold,
	}
}
