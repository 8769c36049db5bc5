package sim

import (
	"context"
	"sync"

	"github.com/san-kum/csrtrack/internal/beam"
)

// Sweep tracks several independent beams through the same lattice, one
// goroutine per beam. Each run gets its own metrics from newMetrics since
// metrics are stateful.
type Sweep struct {
	base       *Simulator
	newMetrics func() []Metric
}

func NewSweep(s *Simulator, newMetrics func() []Metric) *Sweep {
	return &Sweep{base: s, newMetrics: newMetrics}
}

func (sw *Sweep) Run(ctx context.Context, beams []*beam.Beam, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(beams))
	errs := make([]error, len(beams))

	var wg sync.WaitGroup
	for i, b := range beams {
		wg.Add(1)
		go func(idx int, b *beam.Beam) {
			defer wg.Done()

			sim := New(sw.base.lattice, sw.base.source)
			sim.SetLogger(sw.base.logger.With("run", idx))
			if sw.newMetrics != nil {
				for _, m := range sw.newMetrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, b, cfg)
		}(i, b)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
