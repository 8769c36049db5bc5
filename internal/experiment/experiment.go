// Package experiment turns a run configuration into a ready beam, lattice
// and simulator.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/csrtrack/internal/beam"
	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/distgen"
	"github.com/san-kum/csrtrack/internal/metrics"
	"github.com/san-kum/csrtrack/internal/sim"
	"github.com/san-kum/csrtrack/internal/storage"
	"github.com/san-kum/csrtrack/internal/tracking"
	"github.com/san-kum/csrtrack/internal/wake"
)

type Experiment struct {
	cfg       *config.Config
	beam      *beam.Beam
	lattice   *tracking.Lattice
	simulator *sim.Simulator
	registry  *Registry
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the beam, the lattice and the wake source. The wake source
// is only built when CSR is enabled.
func (e *Experiment) Setup(r *Registry, logger *slog.Logger) error {
	b, err := beam.FromInput(e.cfg.InputBeam)
	if err != nil {
		return err
	}

	lattice, err := tracking.LatticeFromConfig(e.cfg.Lattice)
	if err != nil {
		return err
	}

	var src wake.Source
	if e.cfg.CSR.Enabled {
		src, err = r.GetSource(e.cfg.CSR)
		if err != nil {
			return fmt.Errorf("csr source %s: %w", e.cfg.CSR.Source, err)
		}
	}

	e.beam = b
	e.lattice = lattice
	e.simulator = sim.New(lattice, src)
	e.simulator.SetLogger(logger)
	e.registry = r
	for _, m := range e.metricSet() {
		e.simulator.AddMetric(m)
	}
	return nil
}

// metricSet returns a fresh metric set: the registry defaults plus the
// aperture check when one is configured.
func (e *Experiment) metricSet() []sim.Metric {
	ms := e.registry.DefaultMetrics()
	if e.cfg.Aperture > 0 {
		ms = append(ms, metrics.NewAperture(e.cfg.Aperture))
	}
	return ms
}

func (e *Experiment) simConfig() sim.Config {
	return sim.Config{
		ApplyWake:     e.cfg.CSR.Enabled,
		Transverse:    e.cfg.CSR.TransverseOn,
		ValidateState: true,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	return e.simulator.Run(ctx, e.beam, e.simConfig())
}

// SeedBeams samples the distgen beam n times, with random seeds counting up
// from the seed in the generator input. Seed 0 reproduces Beam().
func (e *Experiment) SeedBeams(n int) ([]*beam.Beam, error) {
	if n < 1 {
		return nil, fmt.Errorf("seed count must be positive, got %d", n)
	}
	style, _, err := e.cfg.InputBeam.String(config.KeyStyle)
	if err != nil {
		return nil, err
	}
	if style != config.StyleDistgen {
		return nil, fmt.Errorf("seed runs need a %s beam, got %q", config.StyleDistgen, style)
	}
	path, _, err := e.cfg.InputBeam.String(config.KeyDistgenFile)
	if err != nil {
		return nil, err
	}

	gen, err := distgen.Load(path)
	if err != nil {
		return nil, err
	}
	base := gen.Input()

	beams := make([]*beam.Beam, n)
	for i := range beams {
		in := base
		in.RandomSeed = base.RandomSeed + uint64(i)
		g, err := distgen.New(in)
		if err != nil {
			return nil, err
		}
		pg, err := g.Run()
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", in.RandomSeed, err)
		}
		if beams[i], err = beam.FromParticleGroup(pg); err != nil {
			return nil, fmt.Errorf("seed %d: %w", in.RandomSeed, err)
		}
	}
	return beams, nil
}

// RunSeeds tracks n independently sampled beams through the lattice
// concurrently. Each run has its own metrics.
func (e *Experiment) RunSeeds(ctx context.Context, n int) ([]*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	beams, err := e.SeedBeams(n)
	if err != nil {
		return nil, err
	}
	return sim.NewSweep(e.simulator, e.metricSet).Run(ctx, beams, e.simConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Beam() *beam.Beam { return e.beam }

func (e *Experiment) Lattice() *tracking.Lattice { return e.lattice }

// Metadata describes the run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	style, _, _ := e.cfg.InputBeam.String(config.KeyStyle)
	meta := storage.RunMetadata{
		Name:       e.cfg.Name,
		BeamStyle:  style,
		StepSize:   e.cfg.Lattice.StepSize,
		Length:     e.cfg.TotalLength(),
		Wake:       e.cfg.CSR.Enabled,
		Transverse: e.cfg.CSR.TransverseOn,
	}
	if e.cfg.CSR.Enabled {
		meta.WakeSource = e.cfg.CSR.Source
	}
	if e.beam != nil {
		meta.Particles = e.beam.Len()
		meta.Charge = e.beam.Charge()
		meta.ReferenceEnergy = e.beam.ReferenceEnergy()
	}
	return meta
}
