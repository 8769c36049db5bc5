package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var recordFields = map[string]func(sim.Record) float64{
	"mean_x":       func(r sim.Record) float64 { return r.MeanX },
	"sigma_x":      func(r sim.Record) float64 { return r.SigmaX },
	"sigma_z":      func(r sim.Record) float64 { return r.SigmaZ },
	"mean_energy":  func(r sim.Record) float64 { return r.MeanEnergy },
	"sigma_energy": func(r sim.Record) float64 { return r.SigmaEnergy },
	"slope":        func(r sim.Record) float64 { return r.Slope },
}

func recordFieldNames() []string {
	return sortedKeys(recordFields)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseScan reads "name=lo:hi:n" into n evenly spaced values.
func parseScan(arg string) (string, []float64, error) {
	name, spec, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad scan %q: want element=lo:hi:n", arg)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad scan %q: want element=lo:hi:n", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad scan %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad scan %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad scan %q: point count must be a positive integer", arg)
	}
	if n == 1 {
		return name, []float64{lo}, nil
	}
	return name, floats.Span(make([]float64, n), lo, hi), nil
}

func hasQuadrupole(cfg *config.Config, name string) bool {
	for _, el := range cfg.Lattice.Elements {
		if el.Name == name && el.Type == "quadrupole" {
			return true
		}
	}
	return false
}

// seedSpread is the mean and sample standard deviation of a metric across
// seed runs.
func seedSpread(results []*sim.Result, name string) (mean, std float64) {
	vals := make([]float64, len(results))
	for i, r := range results {
		vals[i] = r.Metrics[name]
	}
	if len(vals) < 2 {
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}
