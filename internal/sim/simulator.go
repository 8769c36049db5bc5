package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/csrtrack/internal/beam"
	"github.com/san-kum/csrtrack/internal/tracking"
	"github.com/san-kum/csrtrack/internal/wake"
)

type Simulator struct {
	lattice   *tracking.Lattice
	source    wake.Source
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New returns a simulator for lattice. source may be nil when the wake is
// never applied.
func New(lattice *tracking.Lattice, source wake.Source) *Simulator {
	return &Simulator{
		lattice:   lattice,
		source:    source,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run tracks b through the lattice, mutating it in place. On error the
// partial result up to the failing step is returned with the error.
func (s *Simulator) Run(ctx context.Context, b *beam.Beam, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := s.lattice.Steps()
	if cfg.MaxSteps > 0 && cfg.MaxSteps < len(steps) {
		steps = steps[:cfg.MaxSteps]
	}

	result := &Result{
		History: make([]Record, 0, len(steps)+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.History = append(result.History, snapshot(b))
	for _, m := range s.metrics {
		m.Observe(b)
	}

	s.logger.Info("tracking started",
		"particles", b.Len(),
		"steps", len(steps),
		"length", s.lattice.Length(),
		"wake", cfg.ApplyWake,
	)

	for _, step := range steps {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.step(ctx, b, step, cfg); err != nil {
			s.collect(result)
			return result, &StepError{Step: step.Index, Position: b.Position(), Wrapped: err}
		}

		rec := snapshot(b)
		result.History = append(result.History, rec)
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(b)
		}
		for _, obs := range s.observers {
			obs.OnStep(b, rec)
		}

		s.logger.Debug("step",
			"step", rec.Step,
			"s", rec.Position,
			"sigma_x", rec.SigmaX,
			"sigma_E", rec.SigmaEnergy,
		)
	}

	s.collect(result)
	s.logger.Info("tracking finished", "steps", result.StepsTaken, "s", b.Position())
	return result, nil
}

func (s *Simulator) step(ctx context.Context, b *beam.Beam, step tracking.Step, cfg Config) error {
	for _, part := range step.Parts {
		if err := b.AdvanceStep(part.Element, part.Length, part.Full); err != nil {
			return err
		}
	}

	if cfg.ApplyWake {
		g, err := s.source.Grid(ctx, b.Position())
		if err != nil {
			return fmt.Errorf("wake grid: %w", err)
		}
		if err := b.ApplyWake(g, step.Length(), cfg.Transverse); err != nil {
			return err
		}
	}

	if cfg.ValidateState && !finite(b) {
		return ErrInvalidState
	}
	return nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.lattice == nil {
		return fmt.Errorf("sim: no lattice")
	}
	if len(s.lattice.Steps()) == 0 {
		return fmt.Errorf("sim: lattice has no steps")
	}
	if s.lattice.StepSize() <= 0 {
		return fmt.Errorf("sim: step size must be positive, got %f", s.lattice.StepSize())
	}
	if cfg.MaxSteps < 0 {
		return fmt.Errorf("sim: max steps must not be negative, got %d", cfg.MaxSteps)
	}
	if cfg.ApplyWake && s.source == nil {
		return ErrNoWakeSource
	}
	return nil
}

func finite(b *beam.Beam) bool {
	c := b.Coordinates()
	for _, col := range [][]float64{c.X, c.Px, c.Y, c.Py, c.Z, c.Pz} {
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
