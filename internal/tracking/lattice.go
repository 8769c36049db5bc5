package tracking

import (
	"fmt"
	"math"

	"github.com/san-kum/csrtrack/internal/config"
)

// Part is one element slice within a step. Only the last part of a step is
// Full, so the beam's step counter advances once per step.
type Part struct {
	Element Element
	Length  float64
	Full    bool
}

// Step covers StepSize of path length, or less at the lattice end. A step
// straddling element boundaries has one part per element it touches.
type Step struct {
	Index int
	Start float64
	Parts []Part
}

func (s Step) Length() float64 {
	total := 0.0
	for _, p := range s.Parts {
		total += p.Length
	}
	return total
}

type Lattice struct {
	elements []Element
	stepSize float64
	steps    []Step
}

func NewLattice(elements []Element, stepSize float64) (*Lattice, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("tracking: step size must be positive, got %g", stepSize)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("tracking: lattice has no elements")
	}
	for _, el := range elements {
		if el.Length() <= 0 {
			return nil, fmt.Errorf("tracking: element %s has non-positive length %g", el.Name(), el.Length())
		}
	}
	l := &Lattice{elements: elements, stepSize: stepSize}
	l.steps = l.cut()
	return l, nil
}

// LatticeFromConfig builds the lattice described by cfg.
func LatticeFromConfig(cfg config.LatticeConfig) (*Lattice, error) {
	elements := make([]Element, 0, len(cfg.Elements))
	for _, ec := range cfg.Elements {
		el, err := FromConfig(ec.Name, ec.Type, ec.Length, ec.K1)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return NewLattice(elements, cfg.StepSize)
}

func (l *Lattice) Steps() []Step       { return l.steps }
func (l *Lattice) StepSize() float64   { return l.stepSize }
func (l *Lattice) Elements() []Element { return l.elements }

func (l *Lattice) Length() float64 {
	total := 0.0
	for _, el := range l.elements {
		total += el.Length()
	}
	return total
}

func (l *Lattice) cut() []Step {
	starts := make([]float64, len(l.elements))
	ends := make([]float64, len(l.elements))
	s := 0.0
	for i, el := range l.elements {
		starts[i] = s
		s += el.Length()
		ends[i] = s
	}
	total := s
	eps := 1e-12 * math.Max(l.stepSize, total)

	var steps []Step
	for k := 0; ; k++ {
		a := float64(k) * l.stepSize
		if a >= total-eps {
			break
		}
		b := math.Min(float64(k+1)*l.stepSize, total)
		if total-b < eps {
			b = total
		}

		step := Step{Index: k, Start: a}
		for i, el := range l.elements {
			lo := math.Max(a, starts[i])
			hi := math.Min(b, ends[i])
			if hi-lo > eps {
				step.Parts = append(step.Parts, Part{Element: el.Slice(hi - lo), Length: hi - lo})
			}
		}
		if len(step.Parts) == 0 {
			continue
		}
		step.Parts[len(step.Parts)-1].Full = true
		steps = append(steps, step)
	}
	return steps
}
