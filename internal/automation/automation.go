// Package automation runs scripted sequences of tracking runs.
package automation

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/experiment"
	"github.com/san-kum/csrtrack/internal/sim"
	"github.com/san-kum/csrtrack/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a config file with optional overrides.
type ScenarioStep struct {
	Config   string  `yaml:"config"`
	Preset   string  `yaml:"preset"`
	StepSize float64 `yaml:"step_size"`
	// CSR overrides csr.enabled when set.
	CSR    *bool  `yaml:"csr"`
	SaveAs string `yaml:"save_as"`
}

// Outcome is the result of one scenario step.
type Outcome struct {
	Name   string
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file. Config paths are resolved
// against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	dir := filepath.Dir(path)
	for i := range scenario.Steps {
		st := &scenario.Steps[i]
		if st.Config == "" {
			return nil, fmt.Errorf("scenario %s: step %d has no config", path, i+1)
		}
		if !filepath.IsAbs(st.Config) {
			st.Config = filepath.Join(dir, st.Config)
		}
	}

	return &scenario, nil
}

// buildConfig loads the step's config and applies its overrides.
func (st ScenarioStep) buildConfig() (*config.Config, error) {
	cfg, err := config.Load(st.Config)
	if err != nil {
		return nil, err
	}
	if st.Preset != "" {
		p := config.GetPreset(st.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", st.Preset)
		}
		cfg.Lattice = *p
	}
	if st.StepSize > 0 {
		cfg.Lattice.StepSize = st.StepSize
	}
	if st.CSR != nil {
		cfg.CSR.Enabled = *st.CSR
	}
	if st.SaveAs != "" {
		cfg.Name = st.SaveAs
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order, saving each run to store when
// it is not nil. It stops at the first failing step and returns the
// outcomes so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, logger *slog.Logger) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.buildConfig()
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "run", cfg.Name)

		exp := experiment.New(cfg)
		if err := exp.Setup(registry, logger); err != nil {
			return outcomes, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := Outcome{Name: cfg.Name, Result: result}
		if store != nil {
			out.RunID, err = store.Save(exp.Metadata(), result, exp.Beam().ParticleGroup())
			if err != nil {
				return outcomes, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}
