package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/csrtrack/internal/archive"
	"github.com/san-kum/csrtrack/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		History: []sim.Record{
			{Step: 0, Position: 0, MeanX: 1e-6, SigmaX: 2.5e-5, SigmaZ: 1e-4, MeanEnergy: 1e8, SigmaEnergy: 1e4, Slope: 0.1},
			{Step: 1, Position: 0.01, MeanX: 1.1e-6, SigmaX: 2.6e-5, SigmaZ: 1e-4, MeanEnergy: 1.0000001e8, SigmaEnergy: 1.2e4, Slope: 0.12345678901234},
		},
		Metrics:    map[string]float64{"energy_drift": 1.5e-7},
		StepsTaken: 1,
	}
}

func testGroup() *archive.ParticleGroup {
	return &archive.ParticleGroup{
		Species: "electron",
		MC2:     archive.ElectronMass,
		X:       []float64{1e-6, -1e-6},
		Px:      []float64{0, 0},
		Y:       []float64{0, 0},
		Py:      []float64{0, 0},
		Z:       []float64{1e-5, -1e-5},
		Pz:      []float64{1e8, 1e8},
		T:       []float64{0, 0},
		Weight:  []float64{5e-13, 5e-13},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{Name: "test", Particles: 2, ReferenceEnergy: 1e8, StepSize: 0.01, Wake: true}
	runID, err := st.Save(meta, testResult(), testGroup())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Name != "test" || loaded.ID != runID {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if loaded.Steps != 1 {
		t.Errorf("expected 1 step, got %d", loaded.Steps)
	}
	if !loaded.Wake {
		t.Error("expected wake flag to survive")
	}
	if loaded.Metrics["energy_drift"] != 1.5e-7 {
		t.Errorf("expected drift 1.5e-7, got %g", loaded.Metrics["energy_drift"])
	}

	history, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	want := testResult().History
	if len(history) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(history))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, history[i], want[i])
		}
	}

	pg, err := st.LoadBeam(runID)
	if err != nil {
		t.Fatalf("load beam failed: %v", err)
	}
	if pg.Len() != 2 || pg.Charge() != 1e-12 {
		t.Errorf("unexpected beam: %d particles, %g C", pg.Len(), pg.Charge())
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	var ids []string
	for i := 0; i < 11; i++ {
		id, err := st.Save(RunMetadata{Name: "test"}, testResult(), nil)
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != len(ids) {
		t.Fatalf("expected %d runs, got %d", len(ids), len(runs))
	}
	seen := make(map[string]bool)
	for _, r := range runs {
		if seen[r.ID] {
			t.Errorf("duplicate run id %s", r.ID)
		}
		seen[r.ID] = true
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Errorf("runs out of order: %s before %s", runs[i-1].ID, runs[i].ID)
		}
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "test"}, testResult(), testGroup())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "history.csv", "beam.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadHistory("nope"); err == nil {
		t.Error("expected error for missing history")
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{ID: "test_1", Metrics: map[string]float64{"chirp": 0.1}}
	history := testResult().History

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, history); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Run.ID != "test_1" || data.Steps != 2 || len(data.S) != 2 || data.S[1] != 0.01 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.History[1].Slope != history[1].Slope {
		t.Errorf("slope lost precision: %g", data.History[1].Slope)
	}
}
