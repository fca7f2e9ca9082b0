package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/experiment"
	"github.com/san-kum/nssim/internal/solver"
	"github.com/san-kum/nssim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and applies the
// fields given under config on top of it.
type ScenarioStep struct {
	Preset   string    `yaml:"preset"`
	Config   yaml.Node `yaml:"config"`
	Generate bool      `yaml:"generate"`
	Save     bool      `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Resolve builds the run configuration of a step.
func (s *ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	return cfg, nil
}

// StepResult pairs a finished run with the id it was stored under, if any.
type StepResult struct {
	Run   *experiment.Run
	RunID string
}

// RunScenario executes all steps in a scenario. Steps marked save are
// written to st when st is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Printf("Running step %d/%d: %s (N=%d, nu=%g)\n", i+1, len(scenario.Steps), cfg.Name, cfg.Resolution, cfg.Viscosity)

		exp := experiment.New(cfg)
		var run *experiment.Run
		if step.Generate {
			run, err = exp.Generate(ctx, 0)
		} else {
			run, err = exp.Run(ctx)
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Run: run}
		if step.Save && st != nil {
			res.RunID, err = st.Save(cfg, run.Initial, run.Result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep runs a base configuration across a range of viscosity or
// time step values
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue  float64
	FinalEnergy float64
	MaxEnergy   float64
	Peak        float64
	Stable      bool
	FailedAt    float64
}

// SetParam sets a sweepable parameter by name.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "viscosity", "nu":
		cfg.Viscosity = v
	case "dt":
		cfg.Dt = v
	case "duration":
		cfg.Duration = v
	case "forcing":
		cfg.Forcing.Amplitude = v
	case "noise_alpha":
		cfg.Noise.Alpha = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}

// RunSweep executes a parameter sweep. A run that blows up is reported as
// unstable rather than failing the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *sweep.Base
		cfg.ValidateState = true
		// dt sweeps rarely divide the record count evenly
		cfg.AllowUneven = true
		if err := SetParam(&cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(&cfg)
		energy := newEnergyTrace()
		exp.AddObserver(energy)

		run, err := exp.Run(ctx)
		res := SweepResult{ParamValue: paramVal, Stable: true}

		var simErr *solver.SimulationError
		switch {
		case errors.As(err, &simErr) && errors.Is(err, solver.ErrUnstable):
			res.Stable = false
			res.FailedAt = simErr.Time
		case err != nil:
			return nil, fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, paramVal, err)
		default:
			res.Stable = run.Result.Metrics["stability"] == 1.0
			res.Peak = run.Result.Metrics["peak_vorticity"]
		}
		res.FinalEnergy, res.MaxEnergy = energy.final, energy.max

		results = append(results, res)

		fmt.Printf("Sweep %d/%d: %s=%.4g stable=%v\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal, res.Stable)
	}

	return results, nil
}

// MonteCarloConfig runs a base configuration over random seeds
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Seed      int64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	FinalEnergy float64
	Stable      bool // Did simulation remain bounded?
}

// RunMonteCarlo executes trials with fresh initial conditions and noise
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		runCfg := *cfg.Base
		runCfg.Seed = rng.Int63()
		runCfg.ValidateState = true

		run, err := experiment.New(&runCfg).Run(ctx)
		stable := true
		if err != nil {
			if !errors.Is(err, solver.ErrUnstable) {
				return nil, err
			}
			stable = false
		}

		res := MonteCarloResult{TrialID: trial, Seed: runCfg.Seed, Stable: stable}
		if stable {
			res.FinalEnergy = run.Result.Metrics["energy"]
			res.Stable = run.Result.Metrics["stability"] == 1.0
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			fmt.Printf("Monte Carlo: %d/%d trials complete\n", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
