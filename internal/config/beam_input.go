package config

import (
	"fmt"
	"path/filepath"
)

// Beam input styles.
const (
	StyleFromFile      = "from_file"
	StyleDistgen       = "distgen"
	StyleParticleGroup = "ParticleGroup"
)

// Beam input keys.
const (
	KeyStyle         = "style"
	KeyBeamFile      = "beamfile"
	KeyCharge        = "charge"
	KeyEnergy        = "energy"
	KeyDistgenFile   = "distgen_input_file"
	KeyParticleGroup = "particlegroup_file"
	KeyVerbose       = "verbose"
)

// BeamInput is the declarative beam description. It stays a loose map so
// the beam constructor can report missing and unexpected keys per style.
type BeamInput map[string]any

// String returns a string valued key.
func (in BeamInput) String(key string) (string, bool, error) {
	v, ok := in[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, true, nil
}

// Float returns a numeric key as float64. YAML and TOML integers are
// accepted.
func (in BeamInput) Float(key string) (float64, bool, error) {
	v, ok := in[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case uint64:
		return float64(n), true, nil
	default:
		return 0, true, fmt.Errorf("%s: expected number, got %T", key, v)
	}
}

func (in BeamInput) resolvePaths(dir string) {
	for _, key := range []string{KeyBeamFile, KeyDistgenFile, KeyParticleGroup} {
		if s, ok := in[key].(string); ok && s != "" && !filepath.IsAbs(s) {
			in[key] = filepath.Join(dir, s)
		}
	}
}
