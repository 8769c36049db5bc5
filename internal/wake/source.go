package wake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/facette/natsort"
)

// Source yields the wake grid for a bunch at the given path position.
type Source interface {
	Grid(ctx context.Context, position float64) (*Grid, error)
}

// Zero is a source whose fields are identically zero on a fixed mesh.
type Zero struct {
	grid *Grid
}

func NewZero(xAxis, zAxis []float64) *Zero {
	return &Zero{grid: NewZeroGrid(xAxis, zAxis)}
}

func (z *Zero) Grid(ctx context.Context, position float64) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return z.grid, nil
}

// FileSource serves one grid loaded from disk at every position.
type FileSource struct {
	path string
	grid *Grid
}

func NewFileSource(path string) (*FileSource, error) {
	g, err := LoadGrid(path)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(len(g.XKick) > 0); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &FileSource{path: path, grid: g}, nil
}

func (f *FileSource) Grid(ctx context.Context, position float64) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.grid, nil
}

// SeriesSource serves precomputed grids keyed by their Position field. The
// grid used at s is the last one whose Position does not exceed s.
type SeriesSource struct {
	grids []*Grid
}

// NewSeriesSource loads every *.yaml grid in dir.
func NewSeriesSource(dir string) (*SeriesSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := strings.ToLower(filepath.Ext(e.Name())); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("wake: no grid files in %s", dir)
	}
	sort.Slice(names, func(i, j int) bool { return natsort.Compare(names[i], names[j]) })

	grids := make([]*Grid, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		g, err := LoadGrid(path)
		if err != nil {
			return nil, err
		}
		if err := g.Validate(len(g.XKick) > 0); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		grids = append(grids, g)
	}
	sort.SliceStable(grids, func(i, j int) bool { return grids[i].Position < grids[j].Position })

	return &SeriesSource{grids: grids}, nil
}

func (s *SeriesSource) Grid(ctx context.Context, position float64) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := sort.Search(len(s.grids), func(i int) bool { return s.grids[i].Position > position })
	if i == 0 {
		return s.grids[0], nil
	}
	return s.grids[i-1], nil
}

// Len reports how many grids the series holds.
func (s *SeriesSource) Len() int { return len(s.grids) }
