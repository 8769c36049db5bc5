// Package storage keeps tracking runs on disk, one directory per run with
// metadata.json, history.csv and the final beam as beam.json.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/facette/natsort"
	"github.com/san-kum/csrtrack/internal/archive"
	"github.com/san-kum/csrtrack/internal/sim"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	beamFile     = "beam.json"
)

var historyHeader = []string{"step", "s", "mean_x", "sigma_x", "sigma_z", "mean_energy", "sigma_energy", "slope"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Timestamp       time.Time          `json:"timestamp"`
	BeamStyle       string             `json:"beam_style"`
	Particles       int                `json:"particles"`
	Charge          float64            `json:"charge"`
	ReferenceEnergy float64            `json:"reference_energy"`
	StepSize        float64            `json:"step_size"`
	Length          float64            `json:"length"`
	Steps           int                `json:"steps"`
	Wake            bool               `json:"wake"`
	Transverse      bool               `json:"transverse"`
	WakeSource      string             `json:"wake_source,omitempty"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes a new run directory and returns its ID. meta.ID, Timestamp,
// Steps and Metrics are filled in from the run. pg may be nil.
func (s *Store) Save(meta RunMetadata, result *sim.Result, pg *archive.ParticleGroup) (string, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	now := time.Now()
	runID, runDir, err := s.newRunDir(meta.Name, now)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
		return "", err
	}
	if pg != nil {
		if err := archive.Write(filepath.Join(runDir, beamFile), pg); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) newRunDir(name string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistory(path string, history []sim.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(historyHeader); err != nil {
		return err
	}

	for _, rec := range history {
		row := []string{strconv.Itoa(rec.Step)}
		for _, v := range []float64{rec.Position, rec.MeanX, rec.SigmaX, rec.SigmaZ, rec.MeanEnergy, rec.SigmaEnergy, rec.Slope} {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every stored run in natural order of run ID.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return natsort.Compare(runs[i].ID, runs[j].ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadHistory reads the per-step records of a run.
func (s *Store) LoadHistory(runID string) ([]sim.Record, error) {
	csvPath := filepath.Join(s.baseDir, runID, historyFile)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(historyHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Record{}, nil
	}

	history := make([]sim.Record, 0, len(records)-1)
	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", historyFile, i+1, err)
		}

		vals := make([]float64, len(record)-1)
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", historyFile, i+1, err)
			}
		}

		history = append(history, sim.Record{
			Step:        step,
			Position:    vals[0],
			MeanX:       vals[1],
			SigmaX:      vals[2],
			SigmaZ:      vals[3],
			MeanEnergy:  vals[4],
			SigmaEnergy: vals[5],
			Slope:       vals[6],
		})
	}

	return history, nil
}

// BeamPath is the stored final beam of a run.
func (s *Store) BeamPath(runID string) string {
	return filepath.Join(s.baseDir, runID, beamFile)
}

func (s *Store) LoadBeam(runID string) (*archive.ParticleGroup, error) {
	return archive.Read(s.BeamPath(runID))
}
