package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const (
	timeColumn       = "time"
	experimentColumn = "experiments"
)

var (
	// ErrMissingTime indicates the dataset has no "time" column.
	ErrMissingTime = errors.New("dataset: missing required time column")

	// ErrNoMeasurements indicates no column besides time/experiments exists.
	ErrNoMeasurements = errors.New("dataset: no measurement columns found")

	// ErrLengthMismatch indicates a column length differs from the time vector.
	ErrLengthMismatch = errors.New("dataset: column length differs from time vector")
)

// Dataset is a tabular time series: a time vector, an optional experiments
// label column and one numeric column per measured quantity. Missing
// observations are stored as NaN.
type Dataset struct {
	time        []float64
	experiments []string
	names       []string
	columns     map[string][]float64
}

// New builds a dataset from a time vector and measurement columns given in
// order. names[i] labels cols[i].
func New(time []float64, names []string, cols [][]float64) (*Dataset, error) {
	if len(time) == 0 {
		return nil, ErrMissingTime
	}
	if len(names) == 0 {
		return nil, ErrNoMeasurements
	}
	if len(names) != len(cols) {
		return nil, fmt.Errorf("dataset: %d names for %d columns", len(names), len(cols))
	}
	ds := &Dataset{
		time:    append([]float64(nil), time...),
		names:   append([]string(nil), names...),
		columns: make(map[string][]float64, len(names)),
	}
	for i, name := range names {
		if len(cols[i]) != len(time) {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d: %w",
				name, len(cols[i]), len(time), ErrLengthMismatch)
		}
		ds.columns[name] = append([]float64(nil), cols[i]...)
	}
	return ds, nil
}

// SetExperiments attaches the optional experiments label column.
func (d *Dataset) SetExperiments(labels []string) error {
	if len(labels) != len(d.time) {
		return fmt.Errorf("dataset: %d experiment labels for %d rows: %w",
			len(labels), len(d.time), ErrLengthMismatch)
	}
	d.experiments = append([]string(nil), labels...)
	return nil
}

// Rows returns the number of observations.
func (d *Dataset) Rows() int { return len(d.time) }

// Names returns the measurement column names in file order.
func (d *Dataset) Names() []string { return append([]string(nil), d.names...) }

// Time returns a copy of the time vector.
func (d *Dataset) Time() []float64 { return append([]float64(nil), d.time...) }

// Experiments returns the experiment labels, or nil when absent.
func (d *Dataset) Experiments() []string {
	if d.experiments == nil {
		return nil
	}
	return append([]string(nil), d.experiments...)
}

// Column returns a copy of the named measurement column.
func (d *Dataset) Column(name string) ([]float64, error) {
	col, ok := d.columns[name]
	if !ok {
		return nil, fmt.Errorf("dataset: unknown column %q", name)
	}
	return append([]float64(nil), col...), nil
}

// Matrix returns the measurements as a rows x columns dense matrix, columns
// in file order.
func (d *Dataset) Matrix() *mat.Dense {
	m := mat.NewDense(len(d.time), len(d.names), nil)
	for j, name := range d.names {
		col := d.columns[name]
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

// FromCSV parses a delimited dataset. The header must contain a "time"
// column; an "experiments" column is optional; every other column is a
// measurement. Cells that do not parse as numbers become NaN.
func FromCSV(r io.Reader, comma rune) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset: need a header and at least one row")
	}

	header := records[0]
	timeIdx, expIdx := -1, -1
	var names []string
	var nameIdx []int
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case timeColumn:
			timeIdx = i
		case experimentColumn:
			expIdx = i
		default:
			names = append(names, strings.TrimSpace(h))
			nameIdx = append(nameIdx, i)
		}
	}
	if timeIdx < 0 {
		return nil, ErrMissingTime
	}
	if len(names) == 0 {
		return nil, ErrNoMeasurements
	}

	rows := records[1:]
	time := make([]float64, len(rows))
	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	var labels []string
	if expIdx >= 0 {
		labels = make([]string, len(rows))
	}

	for i, rec := range rows {
		t, err := strconv.ParseFloat(strings.TrimSpace(rec[timeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: bad time value %q", i+1, rec[timeIdx])
		}
		time[i] = t
		if expIdx >= 0 {
			labels[i] = strings.TrimSpace(rec[expIdx])
		}
		for j, idx := range nameIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
			if err != nil {
				v = math.NaN()
			}
			cols[j][i] = v
		}
	}

	ds, err := New(time, names, cols)
	if err != nil {
		return nil, err
	}
	if labels != nil {
		if err := ds.SetExperiments(labels); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Open loads a dataset from a csv or tsv file, picking the delimiter from
// the extension.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	comma := ','
	if filepath.Ext(path) == ".tsv" {
		comma = '\t'
	}
	return FromCSV(f, comma)
}
