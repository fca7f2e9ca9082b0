package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/solver"
)

func testRun(batch, n, records int) (*config.Config, field.Field, *solver.Result) {
	cfg := config.DefaultConfig()
	cfg.Name = "test"
	cfg.Seed = 42

	initial := field.New(batch, n)
	for i := range initial.Data {
		initial.Data[i] = float64(i) * 0.25
	}

	result := &solver.Result{
		Snapshots:  make([]field.Field, records),
		Times:      make([]float64, records),
		StepsTaken: records * 10,
		Metrics:    map[string]float64{"energy": 1.5},
	}
	for r := range result.Snapshots {
		snap := field.New(batch, n)
		for i := range snap.Data {
			snap.Data[i] = float64(r) + float64(i)/7
		}
		result.Snapshots[r] = snap
		result.Times[r] = float64(r+1) * 0.1
	}
	return cfg, initial, result
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, initial, result := testRun(2, 4, 3)

	runID, err := st.Save(cfg, initial, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Batch != 2 || meta.Resolution != 4 || meta.Records != 3 {
		t.Errorf("unexpected shape in metadata: %+v", meta)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["energy"])
	}

	times, err := st.LoadTimes(runID)
	if err != nil {
		t.Fatalf("load times failed: %v", err)
	}
	if len(times) != 3 {
		t.Fatalf("expected 3 times, got %d", len(times))
	}
	for i := range times {
		if times[i] != result.Times[i] {
			t.Errorf("time %d: expected %v, got %v", i, result.Times[i], times[i])
		}
	}

	w0, err := st.LoadInitial(runID)
	if err != nil {
		t.Fatalf("load initial failed: %v", err)
	}
	for i := range w0.Data {
		if w0.Data[i] != initial.Data[i] {
			t.Fatalf("initial value %d: expected %v, got %v", i, initial.Data[i], w0.Data[i])
		}
	}

	loaded, err := st.LoadSnapshots(runID)
	if err != nil {
		t.Fatalf("load snapshots failed: %v", err)
	}
	if len(loaded.Snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(loaded.Snapshots))
	}
	for r := range loaded.Snapshots {
		for i, v := range loaded.Snapshots[r].Data {
			if v != result.Snapshots[r].Data[i] {
				t.Fatalf("snapshot %d value %d: expected %v, got %v", r, i, result.Snapshots[r].Data[i], v)
			}
		}
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

	cfg, initial, result := testRun(1, 2, 1)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(cfg, initial, result); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if len(runs) == 2 && runs[0].ID == runs[1].ID {
		t.Error("run ids should be unique")
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, initial, result := testRun(1, 2, 1)
	runID, err := st.Save(cfg, initial, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "times.csv", "initial.csv", "snapshots.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportRun(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, initial, result := testRun(2, 4, 3)
	runID, err := st.Save(cfg, initial, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	path := filepath.Join(tmpDir, "out.json")
	if err := st.ExportRun(runID, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(data.A) != 2 || len(data.U) != 2 || len(data.T) != 3 {
		t.Fatalf("unexpected export shape: a=%d u=%d t=%d", len(data.A), len(data.U), len(data.T))
	}
	if len(data.U[1][2][3]) != 3 {
		t.Fatalf("expected 3 records per point, got %d", len(data.U[1][2][3]))
	}
	for r := 0; r < 3; r++ {
		want := result.Snapshots[r].At(1, 2, 3)
		if data.U[1][2][3][r] != want {
			t.Errorf("u[1][2][3][%d] = %v, want %v", r, data.U[1][2][3][r], want)
		}
	}
	if data.A[1][2][3] != initial.At(1, 2, 3) {
		t.Errorf("a[1][2][3] = %v, want %v", data.A[1][2][3], initial.At(1, 2, 3))
	}
}
