package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/csrtrack/internal/beam"
)

var (
	// ErrInvalidState indicates a coordinate became NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid beam state (NaN or Inf detected)")

	// ErrNoWakeSource indicates wake kicks were requested without a source.
	ErrNoWakeSource = errors.New("sim: wake enabled but no wake source set")
)

type Metric interface {
	Name() string
	Observe(b *beam.Beam)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(b *beam.Beam, rec Record)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(b *beam.Beam, rec Record)

func (f ObserverFunc) OnStep(b *beam.Beam, rec Record) { f(b, rec) }

type Config struct {
	// ApplyWake kicks the beam once per full step.
	ApplyWake bool
	// Transverse also applies the horizontal kick.
	Transverse bool
	// MaxSteps stops early when positive.
	MaxSteps      int
	ValidateState bool
}

// Record is one row of the run history, taken after a full step.
type Record struct {
	Step        int     `json:"step"`
	Position    float64 `json:"s"`
	MeanX       float64 `json:"mean_x"`
	SigmaX      float64 `json:"sigma_x"`
	SigmaZ      float64 `json:"sigma_z"`
	MeanEnergy  float64 `json:"mean_energy"`
	SigmaEnergy float64 `json:"sigma_energy"`
	Slope       float64 `json:"slope"`
}

func snapshot(b *beam.Beam) Record {
	st := b.Stats()
	return Record{
		Step:        b.StepCount(),
		Position:    b.Position(),
		MeanX:       st.MeanX,
		SigmaX:      st.SigmaX,
		SigmaZ:      st.SigmaZ,
		MeanEnergy:  b.MeanEnergy(),
		SigmaEnergy: b.SigmaEnergy(),
		Slope:       st.Slope,
	}
}

type Result struct {
	History    []Record
	Metrics    map[string]float64
	StepsTaken int
}

// Last returns the final history record.
func (r *Result) Last() Record {
	if len(r.History) == 0 {
		return Record{}
	}
	return r.History[len(r.History)-1]
}

// StepError wraps a failure with the step it happened on.
type StepError struct {
	Step     int
	Position float64
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("sim: step %d at s=%.4f m: %v", e.Step, e.Position, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }
