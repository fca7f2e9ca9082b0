package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/solver"
)

const (
	metadataFile  = "metadata.json"
	timesFile     = "times.csv"
	initialFile   = "initial.csv"
	snapshotsFile = "snapshots.csv"
)

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
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Resolution  int                `json:"resolution"`
	Batch       int                `json:"batch"`
	Viscosity   float64            `json:"viscosity"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	RecordSteps int                `json:"record_steps"`
	Steps       int                `json:"steps"`
	Records     int                `json:"records"`
	Initial     string             `json:"initial"`
	Forcing     string             `json:"forcing"`
	Noise       string             `json:"noise"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the initial fields, the snapshot
// sequence and the recording times.
func (s *Store) Save(cfg *config.Config, initial field.Field, result *solver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Timestamp:   time.Now(),
		Seed:        cfg.Seed,
		Resolution:  initial.N,
		Batch:       initial.Batch,
		Viscosity:   cfg.Viscosity,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		RecordSteps: cfg.RecordSteps,
		Steps:       result.StepsTaken,
		Records:     len(result.Snapshots),
		Initial:     cfg.Initial.Kind,
		Forcing:     cfg.Forcing.Kind,
		Noise:       cfg.Noise.Kind,
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTimes(filepath.Join(runDir, timesFile), result.Times); err != nil {
		return "", err
	}
	if err := writeInitial(filepath.Join(runDir, initialFile), initial); err != nil {
		return "", err
	}
	if err := writeSnapshots(filepath.Join(runDir, snapshotsFile), result); err != nil {
		return "", err
	}

	return runID, nil
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

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func valueHeader(prefix []string, n int) []string {
	header := append([]string(nil), prefix...)
	for i := 0; i < n*n; i++ {
		header = append(header, fmt.Sprintf("w%d", i))
	}
	return header
}

func writeTimes(path string, times []float64) error {
	return writeCSV(path, []string{"record", "time"}, func(w *csv.Writer) error {
		for i, t := range times {
			if err := w.Write([]string{strconv.Itoa(i), formatFloat(t)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeInitial(path string, initial field.Field) error {
	return writeCSV(path, valueHeader([]string{"sample"}, initial.N), func(w *csv.Writer) error {
		for b := 0; b < initial.Batch; b++ {
			row := []string{strconv.Itoa(b)}
			for _, v := range initial.Sample(b) {
				row = append(row, formatFloat(v))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSnapshots(path string, result *solver.Result) error {
	n := 0
	if len(result.Snapshots) > 0 {
		n = result.Snapshots[0].N
	}
	return writeCSV(path, valueHeader([]string{"record", "sample", "time"}, n), func(w *csv.Writer) error {
		for r, snap := range result.Snapshots {
			for b := 0; b < snap.Batch; b++ {
				row := []string{strconv.Itoa(r), strconv.Itoa(b), formatFloat(result.Times[r])}
				for _, v := range snap.Sample(b) {
					row = append(row, formatFloat(v))
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// List returns the metadata of every run, newest first.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseValues(dst []float64, cols []string) error {
	if len(cols) != len(dst) {
		return fmt.Errorf("storage: expected %d values, got %d", len(dst), len(cols))
	}
	for i, c := range cols {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return fmt.Errorf("storage: value %d: %w", i, err)
		}
		dst[i] = v
	}
	return nil
}

func (s *Store) LoadTimes(runID string) ([]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, timesFile))
	if err != nil {
		return nil, err
	}

	times := make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: time: %w", err)
		}
		times = append(times, t)
	}
	return times, nil
}

func (s *Store) LoadInitial(runID string) (field.Field, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return field.Field{}, err
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, initialFile))
	if err != nil {
		return field.Field{}, err
	}

	w0 := field.New(meta.Batch, meta.Resolution)
	for _, record := range records {
		b, err := strconv.Atoi(record[0])
		if err != nil || b < 0 || b >= meta.Batch {
			return field.Field{}, fmt.Errorf("storage: bad sample index %q", record[0])
		}
		if err := parseValues(w0.Sample(b), record[1:]); err != nil {
			return field.Field{}, err
		}
	}
	return w0, nil
}

// LoadSnapshots rebuilds the recorded sequence of a run.
func (s *Store) LoadSnapshots(runID string) (*solver.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, snapshotsFile))
	if err != nil {
		return nil, err
	}

	result := &solver.Result{
		Snapshots:  make([]field.Field, meta.Records),
		Times:      make([]float64, meta.Records),
		StepsTaken: meta.Steps,
		Metrics:    meta.Metrics,
	}
	for r := range result.Snapshots {
		result.Snapshots[r] = field.New(meta.Batch, meta.Resolution)
	}

	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		r, err := strconv.Atoi(record[0])
		if err != nil || r < 0 || r >= meta.Records {
			return nil, fmt.Errorf("storage: bad record index %q", record[0])
		}
		b, err := strconv.Atoi(record[1])
		if err != nil || b < 0 || b >= meta.Batch {
			return nil, fmt.Errorf("storage: bad sample index %q", record[1])
		}
		t, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: time: %w", err)
		}
		result.Times[r] = t
		if err := parseValues(result.Snapshots[r].Sample(b), record[3:]); err != nil {
			return nil, err
		}
	}

	return result, nil
}
