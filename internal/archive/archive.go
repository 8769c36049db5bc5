// Package archive stores particle groups in a self-describing JSON layout
// modelled on openPMD particle groups: absolute momenta in eV/c, arrival
// time, macro-particle weight in Coulombs.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ElectronMass is the electron rest energy in eV.
const ElectronMass = 510998.95

var ErrEmpty = errors.New("archive: particle group has no particles")

type ParticleGroup struct {
	Species string    `json:"species"`
	MC2     float64   `json:"mc2"`
	X       []float64 `json:"x"`
	Px      []float64 `json:"px"`
	Y       []float64 `json:"y"`
	Py      []float64 `json:"py"`
	Z       []float64 `json:"z"`
	Pz      []float64 `json:"pz"`
	T       []float64 `json:"t"`
	Weight  []float64 `json:"weight"`
}

func (pg *ParticleGroup) Len() int { return len(pg.X) }

// Charge is the total charge carried by the group.
func (pg *ParticleGroup) Charge() float64 {
	q := 0.0
	for _, w := range pg.Weight {
		q += w
	}
	return q
}

// Energy returns the total energy of every particle in eV.
func (pg *ParticleGroup) Energy() []float64 {
	e := make([]float64, pg.Len())
	for i := range e {
		p2 := pg.Px[i]*pg.Px[i] + pg.Py[i]*pg.Py[i] + pg.Pz[i]*pg.Pz[i]
		e[i] = math.Sqrt(p2 + pg.MC2*pg.MC2)
	}
	return e
}

// Validate checks every column has the same length and the group is not
// empty.
func (pg *ParticleGroup) Validate() error {
	n := len(pg.X)
	if n == 0 {
		return ErrEmpty
	}
	cols := map[string][]float64{
		"px": pg.Px, "y": pg.Y, "py": pg.Py, "z": pg.Z, "pz": pg.Pz, "t": pg.T, "weight": pg.Weight,
	}
	for name, col := range cols {
		if len(col) != n {
			return fmt.Errorf("archive: column %s has %d entries, want %d", name, len(col), n)
		}
	}
	if pg.MC2 <= 0 {
		return fmt.Errorf("archive: mc2 must be positive, got %g", pg.MC2)
	}
	return nil
}

func Read(path string) (*ParticleGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pg ParticleGroup
	if err := json.Unmarshal(data, &pg); err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", path, err)
	}
	if err := pg.Validate(); err != nil {
		return nil, err
	}
	return &pg, nil
}

func Write(path string, pg *ParticleGroup) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(pg)
}
