package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStepSize  = 0.01
	DefaultOutputDir = ".csrtrack"
	DefaultBins      = 64
)

// Wake source kinds.
const (
	SourceZero   = "zero"
	SourceFile   = "file"
	SourceSeries = "series"
)

type Config struct {
	Name      string        `yaml:"name" toml:"name"`
	OutputDir string        `yaml:"output_dir" toml:"output_dir"`
	InputBeam BeamInput     `yaml:"input_beam" toml:"input_beam"`
	Lattice   LatticeConfig `yaml:"lattice" toml:"lattice"`
	CSR       CSRConfig     `yaml:"csr" toml:"csr"`
	// Aperture is the half-width in x, in metres, watched by the aperture
	// metric. Zero disables it.
	Aperture float64 `yaml:"aperture" toml:"aperture"`
}

type LatticeConfig struct {
	StepSize float64         `yaml:"step_size" toml:"step_size"`
	Elements []ElementConfig `yaml:"elements" toml:"elements"`
}

type ElementConfig struct {
	Name   string  `yaml:"name" toml:"name"`
	Type   string  `yaml:"type" toml:"type"`
	Length float64 `yaml:"L" toml:"L"`
	K1     float64 `yaml:"K1" toml:"K1"`
}

type CSRConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled"`
	TransverseOn bool   `yaml:"transverse_on" toml:"transverse_on"`
	Source       string `yaml:"source" toml:"source"`
	Path         string `yaml:"path" toml:"path"`
	// Mesh of the zero source, ranges in metres.
	XRange [2]float64 `yaml:"x_range" toml:"x_range"`
	ZRange [2]float64 `yaml:"z_range" toml:"z_range"`
	NX     int        `yaml:"nx" toml:"nx"`
	NZ     int        `yaml:"nz" toml:"nz"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:      "csrtrack",
		OutputDir: DefaultOutputDir,
		Lattice: LatticeConfig{
			StepSize: DefaultStepSize,
		},
		CSR: CSRConfig{
			Enabled: true,
			Source:  SourceZero,
			XRange:  [2]float64{-1e-3, 1e-3},
			ZRange:  [2]float64{-1e-3, 1e-3},
			NX:      32,
			NZ:      32,
		},
	}
}

// Load reads a run configuration. Files ending in .toml are decoded as TOML,
// anything else as YAML. Unknown keys are rejected in both syntaxes. Relative
// paths inside the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config: unknown keys in %s: %v", path, undecoded)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Lattice.StepSize <= 0 {
		return fmt.Errorf("config: step_size must be positive, got %g", c.Lattice.StepSize)
	}
	if c.Aperture < 0 {
		return fmt.Errorf("config: aperture must not be negative, got %g", c.Aperture)
	}
	if len(c.Lattice.Elements) == 0 {
		return fmt.Errorf("config: lattice has no elements")
	}
	for i, el := range c.Lattice.Elements {
		switch el.Type {
		case "drift", "quadrupole":
		default:
			return fmt.Errorf("config: element %d (%s): unknown type %q", i, el.Name, el.Type)
		}
		if el.Length <= 0 {
			return fmt.Errorf("config: element %d (%s): length must be positive, got %g", i, el.Name, el.Length)
		}
	}

	switch c.CSR.Source {
	case SourceZero:
		if c.CSR.NX < 1 || c.CSR.NZ < 1 {
			return fmt.Errorf("config: zero wake mesh needs nx, nz >= 1")
		}
		if c.CSR.XRange[1] <= c.CSR.XRange[0] || c.CSR.ZRange[1] <= c.CSR.ZRange[0] {
			return fmt.Errorf("config: wake mesh ranges must be increasing")
		}
	case SourceFile, SourceSeries:
		if c.CSR.Path == "" {
			return fmt.Errorf("config: csr source %q requires a path", c.CSR.Source)
		}
	default:
		return fmt.Errorf("config: unknown csr source %q", c.CSR.Source)
	}
	return nil
}

// TotalLength is the summed length of all lattice elements.
func (c *Config) TotalLength() float64 {
	total := 0.0
	for _, el := range c.Lattice.Elements {
		total += el.Length
	}
	return total
}

func (c *Config) resolvePaths(dir string) {
	if c.CSR.Path != "" && !filepath.IsAbs(c.CSR.Path) {
		c.CSR.Path = filepath.Join(dir, c.CSR.Path)
	}
	c.InputBeam.resolvePaths(dir)
}
