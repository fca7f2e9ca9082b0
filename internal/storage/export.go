package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/solver"
)

// ExportData mirrors the dataset layout consumed by training code: a holds
// the initial fields, u the trajectories as batch × N × N × records, t the
// recording times.
type ExportData struct {
	Meta    *RunMetadata       `json:"meta,omitempty"`
	A       [][][]float64      `json:"a"`
	U       [][][][]float64    `json:"u"`
	T       []float64          `json:"t"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func newExportData(meta *RunMetadata, initial field.Field, result *solver.Result) ExportData {
	data := ExportData{
		Meta:    meta,
		A:       make([][][]float64, initial.Batch),
		U:       make([][][][]float64, initial.Batch),
		T:       result.Times,
		Metrics: result.Metrics,
	}

	// Stack is flat batch × N × N × records; re-slice it without copying
	records := len(result.Snapshots)
	stack := result.Stack()
	n := initial.N
	for b := 0; b < initial.Batch; b++ {
		data.A[b] = initial.Slice(b)

		u := make([][][]float64, n)
		for i := range u {
			u[i] = make([][]float64, n)
			for j := range u[i] {
				off := ((b*n+i)*n + j) * records
				u[i][j] = stack[off : off+records : off+records]
			}
		}
		data.U[b] = u
	}
	return data
}

func encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta *RunMetadata, initial field.Field, result *solver.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return encode(file, newExportData(meta, initial, result))
}

func ExportJSONStdout(meta *RunMetadata, initial field.Field, result *solver.Result) error {
	return encode(os.Stdout, newExportData(meta, initial, result))
}

// ExportRun loads a stored run and writes it as JSON.
func (s *Store) ExportRun(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	initial, err := s.LoadInitial(runID)
	if err != nil {
		return err
	}
	result, err := s.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if path == "" {
		return ExportJSONStdout(meta, initial, result)
	}
	return ExportJSON(path, meta, initial, result)
}
