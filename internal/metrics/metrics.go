// Package metrics holds scalar figures of merit observed over a tracking
// run. Every metric implements sim.Metric.
package metrics

import "github.com/san-kum/csrtrack/internal/sim"

// Default returns a fresh set of the metrics attached to every CLI run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergySpread(),
		NewEnergyDrift(),
		NewSigmaXGrowth(false),
		NewSigmaXGrowth(true),
		NewChirp(),
	}
}
