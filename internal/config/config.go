package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all static configuration for the simulator. Precedence is
// defaults < YAML file < environment variables; validation happens once, at
// load, and a bad value aborts startup.
type Config struct {
	// Core settings
	SimulatorName string `yaml:"simulator_name"`
	OPCUAPort     int    `yaml:"opcua_port"`
	APIPort       int    `yaml:"api_port"`
	HealthPort    int    `yaml:"health_port"`

	// Fleet settings
	NumMotors  int   `yaml:"num_motors"`
	Seed       int64 `yaml:"seed"`
	Workers    int   `yaml:"workers"`
	MaxHistory int   `yaml:"max_history"`

	// Simulation multipliers
	DegradationSpeed float64 `yaml:"degradation_speed"`
	NoiseLevel       float64 `yaml:"noise_level"`
	LoadLevel        float64 `yaml:"load_level"`
	AlertThreshold   float64 `yaml:"alert_threshold"`

	// Timing settings
	PublishInterval time.Duration `yaml:"publish_interval"`
}

// Load reads configuration from an optional YAML file and environment
// variables, environment winning. Pass an empty path to skip the file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		SimulatorName:    "MotorFleet-01",
		OPCUAPort:        4840,
		APIPort:          8080,
		HealthPort:       8081,
		NumMotors:        5,
		Seed:             42,
		Workers:          1,
		MaxHistory:       5000,
		DegradationSpeed: 1.0,
		NoiseLevel:       1.0,
		LoadLevel:        1.0,
		AlertThreshold:   0.70,
		PublishInterval:  1 * time.Second,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.SimulatorName = getEnvOrDefault("SIMULATOR_NAME", cfg.SimulatorName)
	cfg.OPCUAPort = getEnvAsIntOrDefault("OPCUA_PORT", cfg.OPCUAPort)
	cfg.APIPort = getEnvAsIntOrDefault("API_PORT", cfg.APIPort)
	cfg.HealthPort = getEnvAsIntOrDefault("HEALTH_PORT", cfg.HealthPort)
	cfg.NumMotors = getEnvAsIntOrDefault("NUM_MOTORS", cfg.NumMotors)
	cfg.Seed = int64(getEnvAsIntOrDefault("SEED", int(cfg.Seed)))
	cfg.Workers = getEnvAsIntOrDefault("WORKERS", cfg.Workers)
	cfg.MaxHistory = getEnvAsIntOrDefault("MAX_HISTORY", cfg.MaxHistory)
	cfg.DegradationSpeed = getEnvAsFloatOrDefault("DEGRADATION_SPEED", cfg.DegradationSpeed)
	cfg.NoiseLevel = getEnvAsFloatOrDefault("NOISE_LEVEL", cfg.NoiseLevel)
	cfg.LoadLevel = getEnvAsFloatOrDefault("LOAD_LEVEL", cfg.LoadLevel)
	cfg.AlertThreshold = getEnvAsFloatOrDefault("ALERT_THRESHOLD", cfg.AlertThreshold)
	cfg.PublishInterval = getDurationOrDefault("PUBLISH_INTERVAL", cfg.PublishInterval)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Called by Load; exported so tests and
// embedders can validate hand-built configs.
func (c *Config) Validate() error {
	if c.NumMotors <= 0 {
		return fmt.Errorf("num_motors must be positive, got %d", c.NumMotors)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("max_history must be non-negative, got %d", c.MaxHistory)
	}
	if c.DegradationSpeed <= 0 || c.DegradationSpeed > 100 {
		return fmt.Errorf("degradation_speed must be in (0, 100], got %f", c.DegradationSpeed)
	}
	if c.NoiseLevel < 0 || c.NoiseLevel > 10 {
		return fmt.Errorf("noise_level must be in [0, 10], got %f", c.NoiseLevel)
	}
	if c.LoadLevel <= 0 || c.LoadLevel > 5 {
		return fmt.Errorf("load_level must be in (0, 5], got %f", c.LoadLevel)
	}
	if c.AlertThreshold < 0 || c.AlertThreshold > 1 {
		return fmt.Errorf("alert_threshold must be in [0, 1], got %f", c.AlertThreshold)
	}
	if c.PublishInterval <= 0 {
		return fmt.Errorf("publish_interval must be positive, got %s", c.PublishInterval)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
