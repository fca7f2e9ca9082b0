package config

import (
	"fmt"
	"os"

	"github.com/san-kum/nssim/internal/solver"
	"gopkg.in/yaml.v3"
)

const (
	DefaultResolution  = 64
	DefaultBatch       = 4
	DefaultViscosity   = 1e-3
	DefaultDuration    = 1.0
	DefaultDt          = 1e-3
	DefaultRecordSteps = 10
	DefaultGRFAlpha    = 2.5
	DefaultGRFTau      = 7.0
	DefaultNoiseAlpha  = 0.05
	DefaultForcingAmp  = 0.1
)

type Config struct {
	Name          string  `yaml:"name"`
	Resolution    int     `yaml:"resolution"`
	Batch         int     `yaml:"batch"`
	Samples       int     `yaml:"samples"`
	Viscosity     float64 `yaml:"viscosity"`
	Duration      float64 `yaml:"duration"`
	Dt            float64 `yaml:"dt"`
	RecordSteps   int     `yaml:"record_steps"`
	Seed          int64   `yaml:"seed"`
	Workers       int     `yaml:"workers"`
	ValidateState bool    `yaml:"validate_state"`
	AllowUneven   bool    `yaml:"allow_uneven_recording"`

	Initial InitialConfig `yaml:"initial"`
	Forcing ForcingConfig `yaml:"forcing"`
	Noise   NoiseConfig   `yaml:"noise"`
}

// InitialConfig selects how w0 is drawn.
type InitialConfig struct {
	Kind  string  `yaml:"kind"`
	Alpha float64 `yaml:"alpha"`
	Tau   float64 `yaml:"tau"`
	Amp   float64 `yaml:"amplitude"`
}

// ForcingConfig selects the deterministic forcing field.
type ForcingConfig struct {
	Kind       string  `yaml:"kind"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavenumber int     `yaml:"wavenumber"`
}

// NoiseConfig selects the stochastic forcing source.
type NoiseConfig struct {
	Kind  string  `yaml:"kind"`
	Alpha float64 `yaml:"alpha"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:          "run",
		Resolution:    DefaultResolution,
		Batch:         DefaultBatch,
		Samples:       DefaultBatch,
		Viscosity:     DefaultViscosity,
		Duration:      DefaultDuration,
		Dt:            DefaultDt,
		RecordSteps:   DefaultRecordSteps,
		ValidateState: true,
		Initial: InitialConfig{
			Kind:  "grf",
			Alpha: DefaultGRFAlpha,
			Tau:   DefaultGRFTau,
			Amp:   1.0,
		},
		Forcing: ForcingConfig{
			Kind:       "periodic",
			Amplitude:  DefaultForcingAmp,
			Wavenumber: 4,
		},
		Noise: NoiseConfig{
			Kind:  "none",
			Alpha: DefaultNoiseAlpha,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Solver converts the run parameters into a solver configuration.
func (c *Config) Solver() solver.Config {
	return solver.Config{
		Viscosity:            c.Viscosity,
		Duration:             c.Duration,
		Dt:                   c.Dt,
		RecordSteps:          c.RecordSteps,
		ValidateState:        c.ValidateState,
		AllowUnevenRecording: c.AllowUneven,
	}
}

// Steps is the number of time steps a run will take.
func (c *Config) Steps() int {
	return solver.Steps(c.Duration, c.Dt)
}

// Batches splits Samples into batch sizes of at most Batch.
func (c *Config) Batches() []int {
	total := c.Samples
	if total <= 0 {
		total = c.Batch
	}
	size := c.Batch
	if size <= 0 {
		size = total
	}

	out := make([]int, 0, (total+size-1)/size)
	for total > 0 {
		b := size
		if total < b {
			b = total
		}
		out = append(out, b)
		total -= b
	}
	return out
}
