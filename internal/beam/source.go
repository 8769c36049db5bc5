package beam

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/csrtrack/internal/archive"
	"github.com/san-kum/csrtrack/internal/config"
	"github.com/san-kum/csrtrack/internal/distgen"
	"gonum.org/v1/gonum/stat"
)

// Source is one of FromFile, FromGenerator or FromArchive.
type Source interface {
	style() string
}

// FromFile reads an N×6 coordinate table (x px y py z pz per line) from
// Path, or from Reader when it is set. Charge is in Coulombs and Energy is
// the reference energy in eV.
type FromFile struct {
	Path   string
	Reader io.Reader
	Charge float64
	Energy float64
}

// FromGenerator runs a distgen input file.
type FromGenerator struct {
	InputFile string
}

// FromArchive loads a stored particle group.
type FromArchive struct {
	Path string
}

func (FromFile) style() string      { return config.StyleFromFile }
func (FromGenerator) style() string { return config.StyleDistgen }
func (FromArchive) style() string   { return config.StyleParticleGroup }

// New builds a beam from src. The variants may be passed by value or by
// pointer; a nil pointer counts as no source.
func New(src Source) (*Beam, error) {
	switch s := deref(src).(type) {
	case FromFile:
		return newFromFile(s)
	case FromGenerator:
		gen, err := distgen.Load(s.InputFile)
		if err != nil {
			return nil, &ConfigError{Style: s.style(), Field: config.KeyDistgenFile, Reason: err.Error()}
		}
		pg, err := gen.Run()
		if err != nil {
			return nil, &ConfigError{Style: s.style(), Field: config.KeyDistgenFile, Reason: err.Error()}
		}
		return FromParticleGroup(pg)
	case FromArchive:
		pg, err := archive.Read(s.Path)
		if err != nil {
			return nil, &ConfigError{Style: s.style(), Field: config.KeyParticleGroup, Reason: err.Error()}
		}
		return FromParticleGroup(pg)
	case nil:
		return nil, &ConfigError{Reason: "no beam source given"}
	default:
		return nil, &ConfigError{Style: s.style(), Reason: "unsupported source"}
	}
}

func deref(src Source) Source {
	switch s := src.(type) {
	case *FromFile:
		if s == nil {
			return nil
		}
		return *s
	case *FromGenerator:
		if s == nil {
			return nil
		}
		return *s
	case *FromArchive:
		if s == nil {
			return nil
		}
		return *s
	}
	return src
}

var styleKeys = map[string][]string{
	config.StyleFromFile:      {config.KeyStyle, config.KeyBeamFile, config.KeyCharge, config.KeyEnergy},
	config.StyleDistgen:       {config.KeyStyle, config.KeyDistgenFile},
	config.StyleParticleGroup: {config.KeyStyle, config.KeyParticleGroup},
}

// FromInput validates a declarative beam description and builds the beam.
// Every key must be required by the style or be "verbose".
func FromInput(in config.BeamInput) (*Beam, error) {
	src, err := ParseInput(in)
	if err != nil {
		return nil, err
	}
	return New(src)
}

// ParseInput turns a declarative beam description into a Source without
// touching the filesystem.
func ParseInput(in config.BeamInput) (Source, error) {
	style, ok, err := in.String(config.KeyStyle)
	if err != nil {
		return nil, &ConfigError{Field: config.KeyStyle, Reason: err.Error()}
	}
	if !ok {
		return nil, &ConfigError{Field: config.KeyStyle, Reason: "required field missing"}
	}
	required, ok := styleKeys[style]
	if !ok {
		return nil, &ConfigError{Style: style, Reason: "unrecognized input style"}
	}

	allowed := map[string]bool{config.KeyVerbose: true}
	for _, k := range required {
		allowed[k] = true
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !allowed[k] {
			return nil, &ConfigError{Style: style, Field: k, Reason: "unrecognized field"}
		}
	}
	for _, k := range required {
		if _, ok := in[k]; !ok {
			return nil, &ConfigError{Style: style, Field: k, Reason: "required field missing"}
		}
	}

	str := func(key string) (string, error) {
		s, _, err := in.String(key)
		if err != nil {
			return "", &ConfigError{Style: style, Field: key, Reason: err.Error()}
		}
		return s, nil
	}
	num := func(key string) (float64, error) {
		v, _, err := in.Float(key)
		if err != nil {
			return 0, &ConfigError{Style: style, Field: key, Reason: err.Error()}
		}
		return v, nil
	}

	switch style {
	case config.StyleFromFile:
		path, err := str(config.KeyBeamFile)
		if err != nil {
			return nil, err
		}
		charge, err := num(config.KeyCharge)
		if err != nil {
			return nil, err
		}
		energy, err := num(config.KeyEnergy)
		if err != nil {
			return nil, err
		}
		return FromFile{Path: path, Charge: charge, Energy: energy}, nil
	case config.StyleDistgen:
		path, err := str(config.KeyDistgenFile)
		if err != nil {
			return nil, err
		}
		return FromGenerator{InputFile: path}, nil
	default:
		path, err := str(config.KeyParticleGroup)
		if err != nil {
			return nil, err
		}
		return FromArchive{Path: path}, nil
	}
}

func newFromFile(src FromFile) (*Beam, error) {
	r := src.Reader
	if r == nil {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, &ConfigError{Style: src.style(), Field: config.KeyBeamFile, Reason: err.Error()}
		}
		defer f.Close()
		r = f
	}

	c, err := readTable(r)
	if err != nil {
		return nil, &ConfigError{Style: src.style(), Field: config.KeyBeamFile, Reason: err.Error()}
	}
	c.P0C = src.Energy
	c.MC2 = ElectronMass
	return newBeam(c, src.Charge, src.Energy)
}

// readTable parses whitespace separated rows of exactly six numbers. Blank
// lines and lines starting with '#' are skipped.
func readTable(r io.Reader) (*Coordinates, error) {
	c := &Coordinates{}
	cols := []*[]float64{&c.X, &c.Px, &c.Y, &c.Py, &c.Z, &c.Pz}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Fields(text)
		if len(parts) != len(cols) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(cols), len(parts))
		}
		for j, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*cols[j] = append(*cols[j], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromParticleGroup builds a beam whose reference energy is the mean
// particle energy and whose charge is the group's total charge.
func FromParticleGroup(pg *archive.ParticleGroup) (*Beam, error) {
	if err := pg.Validate(); err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	energy := stat.Mean(pg.Energy(), nil)
	c := toCoordinates(pg, energy)
	return newBeam(c, pg.Charge(), energy)
}
