package dataset

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	ds, err := New(
		[]float64{0, 1, 2},
		[]string{"X", "glc"},
		[][]float64{{1, 2, 4}, {10, 8, 5}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Rows() != 3 {
		t.Errorf("expected 3 rows, got %d", ds.Rows())
	}
	if got := ds.Names(); len(got) != 2 || got[0] != "X" || got[1] != "glc" {
		t.Errorf("unexpected names: %v", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		time  []float64
		names []string
		cols  [][]float64
		want  error
	}{
		{"no time", nil, []string{"X"}, [][]float64{{1}}, ErrMissingTime},
		{"no measurements", []float64{0, 1}, nil, nil, ErrNoMeasurements},
		{"ragged column", []float64{0, 1}, []string{"X"}, [][]float64{{1}}, ErrLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.time, tt.names, tt.cols)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFromCSV(t *testing.T) {
	in := "time,experiments,X_0,mu\n0,a,1.0,0.5\n1,a,2.0,0.6\n2,b,4.1,0.7\n"

	ds, err := FromCSV(strings.NewReader(in), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ds.Names(); len(got) != 2 || got[0] != "X_0" || got[1] != "mu" {
		t.Errorf("unexpected names: %v", got)
	}
	if ds.Rows() != 3 {
		t.Errorf("expected 3 rows, got %d", ds.Rows())
	}
	if exp := ds.Experiments(); len(exp) != 3 || exp[2] != "b" {
		t.Errorf("unexpected experiments: %v", exp)
	}

	r, c := ds.Matrix().Dims()
	if r != 3 || c != 2 {
		t.Errorf("expected 3x2 matrix, got %dx%d", r, c)
	}
}

func TestFromCSV_MissingTime(t *testing.T) {
	in := "X,glc\n1,2\n"
	if _, err := FromCSV(strings.NewReader(in), ','); !errors.Is(err, ErrMissingTime) {
		t.Errorf("expected ErrMissingTime, got %v", err)
	}
}

func TestFromCSV_NoMeasurements(t *testing.T) {
	in := "time,experiments\n0,a\n"
	if _, err := FromCSV(strings.NewReader(in), ','); !errors.Is(err, ErrNoMeasurements) {
		t.Errorf("expected ErrNoMeasurements, got %v", err)
	}
}

func TestFromCSV_MissingValuesBecomeNaN(t *testing.T) {
	in := "time,X,glc\n0,1.0,\n1,,3.0\n"

	ds, err := FromCSV(strings.NewReader(in), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := ds.Matrix()
	if !math.IsNaN(m.At(0, 1)) {
		t.Errorf("expected NaN at (0,1), got %v", m.At(0, 1))
	}
	if !math.IsNaN(m.At(1, 0)) {
		t.Errorf("expected NaN at (1,0), got %v", m.At(1, 0))
	}
	if m.At(1, 1) != 3.0 {
		t.Errorf("expected 3.0 at (1,1), got %v", m.At(1, 1))
	}
}

func TestColumn(t *testing.T) {
	ds, err := New([]float64{0, 1}, []string{"X"}, [][]float64{{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	col, err := ds.Column("X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col) != 2 || col[1] != 2 {
		t.Errorf("unexpected column: %v", col)
	}

	if _, err := ds.Column("nope"); err == nil {
		t.Error("expected error for unknown column")
	}
}
