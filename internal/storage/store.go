package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Store persists fit runs under a base directory, one subdirectory per run
// holding metadata.json and data.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// ParamEstimate is one fitted parameter, optionally with Monte-Carlo
// statistics.
type ParamEstimate struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Mean   float64 `json:"mean,omitempty"`
	SD     float64 `json:"sd,omitempty"`
	Median float64 `json:"median,omitempty"`
	LowCI  float64 `json:"ci_2.5,omitempty"`
	HighCI float64 `json:"ci_97.5,omitempty"`
}

// Khi2Summary mirrors the chi-squared goodness-of-fit report.
type Khi2Summary struct {
	Value        float64 `json:"value"`
	Measurements int     `json:"measurements"`
	Parameters   int     `json:"parameters"`
	DOF          int     `json:"dof"`
	PValue       float64 `json:"p_value"`
	Accepted     bool    `json:"accepted_at_95"`
}

type RunMetadata struct {
	ID         string          `json:"id"`
	Model      string          `json:"model"`
	Timestamp  time.Time       `json:"timestamp"`
	Seed       int64           `json:"seed"`
	DataFile   string          `json:"data_file"`
	Cost       float64         `json:"cost"`
	Iterations int             `json:"mc_iterations,omitempty"`
	Parameters []ParamEstimate `json:"parameters"`
	Khi2       *Khi2Summary    `json:"khi2,omitempty"`
}

// Series holds the time course of a run: experimental and simulated values
// per measurement column.
type Series struct {
	Time         []float64
	Names        []string
	Experimental *mat.Dense
	Simulated    *mat.Dense
}

// Save writes a run directory and returns its id. Missing observations
// (NaN) are written as empty cells.
func (s *Store) Save(meta RunMetadata, series *Series) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "data.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, name := range series.Names {
		header = append(header, name, name+"_sim")
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, t := range series.Time {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for j := range series.Names {
			row = append(row,
				formatCell(series.Experimental.At(i, j)),
				formatCell(series.Simulated.At(i, j)),
			)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads back the time course of a run. Empty cells become NaN.
func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "data.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("storage: run %s has no data rows", runID)
	}

	header := records[0]
	if len(header) < 3 || (len(header)-1)%2 != 0 {
		return nil, fmt.Errorf("storage: run %s has a malformed data header", runID)
	}
	cols := (len(header) - 1) / 2
	names := make([]string, cols)
	for j := 0; j < cols; j++ {
		names[j] = header[1+2*j]
	}

	rows := len(records) - 1
	series := &Series{
		Time:         make([]float64, rows),
		Names:        names,
		Experimental: mat.NewDense(rows, cols, nil),
		Simulated:    mat.NewDense(rows, cols, nil),
	}
	for i := 0; i < rows; i++ {
		rec := records[i+1]
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: run %s row %d: bad time %q", runID, i+1, rec[0])
		}
		series.Time[i] = t
		for j := 0; j < cols; j++ {
			series.Experimental.Set(i, j, parseCell(rec[1+2*j]))
			series.Simulated.Set(i, j, parseCell(rec[2+2*j]))
		}
	}
	return series, nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCell(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
