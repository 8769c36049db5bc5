package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/metrics"
	"github.com/san-kum/csrtrack/internal/sim"
	"github.com/san-kum/csrtrack/internal/wake"
)

type Registry struct {
	sources map[string]func(config.CSRConfig) (wake.Source, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]func(config.CSRConfig) (wake.Source, error)),
	}

	r.sources[config.SourceZero] = func(c config.CSRConfig) (wake.Source, error) {
		xs := wake.UniformAxis(c.XRange[0], c.XRange[1], c.NX)
		zs := wake.UniformAxis(c.ZRange[0], c.ZRange[1], c.NZ)
		return wake.NewZero(xs, zs), nil
	}
	r.sources[config.SourceFile] = func(c config.CSRConfig) (wake.Source, error) {
		return wake.NewFileSource(c.Path)
	}
	r.sources[config.SourceSeries] = func(c config.CSRConfig) (wake.Source, error) {
		return wake.NewSeriesSource(c.Path)
	}

	return r
}

// RegisterSource adds or replaces a wake source kind.
func (r *Registry) RegisterSource(kind string, fn func(config.CSRConfig) (wake.Source, error)) {
	r.sources[kind] = fn
}

func (r *Registry) GetSource(c config.CSRConfig) (wake.Source, error) {
	fn, ok := r.sources[c.Source]
	if !ok {
		return nil, fmt.Errorf("unknown wake source: %s", c.Source)
	}
	return fn(c)
}

func (r *Registry) ListSources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}
