package fitter

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mgarnier/fluxfit/internal/dataset"
	"github.com/mgarnier/fluxfit/internal/kinetics"
	"github.com/mgarnier/fluxfit/internal/model"
)

// syntheticDataset evaluates the exponential variant at known parameters so
// the fitter has an exact optimum to recover.
func syntheticDataset(t *testing.T, x0, mu, m0, q float64) *dataset.Dataset {
	t.Helper()
	time := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3}
	biomass := make([]float64, len(time))
	met := make([]float64, len(time))
	for i, tv := range time {
		biomass[i] = x0 * math.Exp(mu*tv)
		met[i] = q*(x0/mu)*(math.Exp(mu*tv)-1) + m0
	}
	ds, err := dataset.New(time, []string{"X", "glc"}, [][]float64{biomass, met})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	return ds
}

func newTestFitter(t *testing.T, opts Options) *Fitter {
	t.Helper()
	ds := syntheticDataset(t, 0.5, 0.8, 2, 1.5)
	m, err := model.New("exponential", ds)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	variant, err := kinetics.Get("exponential")
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	f, err := New(m, variant, opts)
	if err != nil {
		t.Fatalf("fitter: %v", err)
	}
	return f
}

func TestNew_DefaultSDMatrix(t *testing.T) {
	f := newTestFitter(t, Options{})

	rows, cols := f.SDMatrix().Dims()
	r, c := f.Model.ExperimentalMatrix.Dims()
	if rows != r || cols != c {
		t.Fatalf("sd matrix %dx%d, want %dx%d", rows, cols, r, c)
	}
	if got := f.SDMatrix().At(0, 0); got != DefaultBiomassSD {
		t.Errorf("biomass sd = %v, want %v", got, DefaultBiomassSD)
	}
	if got := f.SDMatrix().At(3, 1); got != DefaultMetaboliteSD {
		t.Errorf("metabolite sd = %v, want %v", got, DefaultMetaboliteSD)
	}
}

func TestNew_ScalarSD(t *testing.T) {
	f := newTestFitter(t, Options{ScalarSD: 0.42})
	rows, cols := f.SDMatrix().Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if f.SDMatrix().At(i, j) != 0.42 {
				t.Fatalf("sd(%d,%d) = %v, want 0.42", i, j, f.SDMatrix().At(i, j))
			}
		}
	}
}

func TestNew_SDKeyValidation(t *testing.T) {
	ds := syntheticDataset(t, 0.5, 0.8, 2, 1.5)
	variant, _ := kinetics.Get("exponential")

	t.Run("unknown key", func(t *testing.T) {
		m, _ := model.New("exponential", ds)
		sds, err := model.NewStandardDevs(
			model.SDEntry{Name: "X", Value: 0.2},
			model.SDEntry{Name: "glc", Value: 0.5},
			model.SDEntry{Name: "bogus", Value: 0.5},
		)
		if err != nil {
			t.Fatalf("sds: %v", err)
		}
		if _, err := New(m, variant, Options{SDs: sds}); err == nil {
			t.Error("expected error for sd key not in the data headers")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		m, _ := model.New("exponential", ds)
		sds, err := model.NewStandardDevs(model.SDEntry{Name: "X", Value: 0.2})
		if err != nil {
			t.Fatalf("sds: %v", err)
		}
		if _, err := New(m, variant, Options{SDs: sds}); err == nil {
			t.Error("expected error for missing sd key")
		}
	})
}

func TestCost(t *testing.T) {
	exp := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	sd := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})

	if got := Cost(mat.DenseCopyOf(exp), exp, sd); got != 0 {
		t.Errorf("cost of exact fit = %v, want 0", got)
	}

	sim := mat.NewDense(2, 2, []float64{2, 2, 3, 4})
	// one residual of 1 weighted by 0.5 -> (1/0.5)^2 = 4
	if got := Cost(sim, exp, sd); got != 4 {
		t.Errorf("cost = %v, want 4", got)
	}
}

func TestCost_SkipsNaN(t *testing.T) {
	exp := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})
	sd := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	sim := mat.NewDense(2, 2, []float64{1, 100, 3, 4})

	if got := Cost(sim, exp, sd); got != 0 {
		t.Errorf("NaN observation must not contribute, got %v", got)
	}
}

func TestOptimize_RecoversParameters(t *testing.T) {
	f := newTestFitter(t, Options{Seed: 12345})

	result, err := f.Optimize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Cost > 0.05 {
		t.Errorf("cost = %v, want near 0 for noise-free data", result.Cost)
	}
	mu, ok := result.Param("mu")
	if !ok {
		t.Fatal("mu missing from result")
	}
	if math.Abs(mu-0.8) > 0.1 {
		t.Errorf("mu = %v, want near 0.8", mu)
	}

	for i, name := range result.Names {
		b, _ := f.Model.Bounds.Get(name)
		if result.Values[i] < b.Lower || result.Values[i] > b.Upper {
			t.Errorf("%s = %v outside bounds [%v, %v]", name, result.Values[i], b.Lower, b.Upper)
		}
	}

	r, c := result.Simulated.Dims()
	er, ec := f.Model.ExperimentalMatrix.Dims()
	if r != er || c != ec {
		t.Errorf("simulated matrix %dx%d, want %dx%d", r, c, er, ec)
	}
}

func TestOptimize_MasksNaN(t *testing.T) {
	ds := syntheticDataset(t, 0.5, 0.8, 2, 1.5)
	m, _ := model.New("exponential", ds)
	m.ExperimentalMatrix.Set(2, 1, math.NaN())
	variant, _ := kinetics.Get("exponential")
	f, err := New(m, variant, Options{Seed: 9})
	if err != nil {
		t.Fatalf("fitter: %v", err)
	}

	result, err := f.Optimize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(result.Simulated.At(2, 1)) {
		t.Error("simulated matrix must carry NaN where the data does")
	}
	if math.IsNaN(result.Simulated.At(1, 1)) {
		t.Error("observed cells must not be masked")
	}
}

func TestChiSquareTest(t *testing.T) {
	f := newTestFitter(t, Options{Seed: 5})

	best := &Result{
		Names:  []string{"X_0", "mu"},
		Values: []float64{0.5, 0.8},
		Cost:   1.0,
	}
	res, err := f.ChiSquareTest(best)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Measurements != 14 { // 7 rows x 2 columns, no NaN
		t.Errorf("measurements = %d, want 14", res.Measurements)
	}
	if res.DOF != 12 {
		t.Errorf("dof = %d, want 12", res.DOF)
	}
	if !res.AcceptedAt95 {
		t.Error("cost 1.0 over 12 dof must be accepted")
	}
	if res.PValue <= 0 || res.PValue >= 0.5 {
		t.Errorf("p-value = %v, want small", res.PValue)
	}
}

func TestChiSquareTest_NoDOF(t *testing.T) {
	ds, err := dataset.New([]float64{0}, []string{"X", "glc"}, [][]float64{{1}, {2}})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	m, _ := model.New("exponential", ds)
	variant, _ := kinetics.Get("exponential")
	f, err := New(m, variant, Options{})
	if err != nil {
		t.Fatalf("fitter: %v", err)
	}

	best := &Result{Names: m.ParametersToEstimate, Values: make([]float64, len(m.ParametersToEstimate))}
	if _, err := f.ChiSquareTest(best); err == nil {
		t.Error("expected error when measurements do not exceed parameters")
	}
}

func TestMonteCarlo(t *testing.T) {
	f := newTestFitter(t, Options{Seed: 77})

	best, err := f.Optimize(context.Background())
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	stats, err := f.MonteCarlo(context.Background(), best, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Iterations != 20 {
		t.Errorf("iterations = %d, want 20", stats.Iterations)
	}
	if len(stats.Params) != len(best.Names) {
		t.Fatalf("expected stats for %d parameters, got %d", len(best.Names), len(stats.Params))
	}
	for _, ps := range stats.Params {
		if math.IsNaN(ps.Mean) || math.IsNaN(ps.SD) {
			t.Errorf("%s: NaN statistics", ps.Name)
		}
		if ps.LowCI > ps.HighCI {
			t.Errorf("%s: CI inverted [%v, %v]", ps.Name, ps.LowCI, ps.HighCI)
		}
	}
	r, c := stats.LowerCI.Dims()
	er, ec := f.Model.ExperimentalMatrix.Dims()
	if r != er || c != ec {
		t.Errorf("CI matrix %dx%d, want %dx%d", r, c, er, ec)
	}
}

func TestMonteCarlo_RequiresResult(t *testing.T) {
	f := newTestFitter(t, Options{})
	if _, err := f.MonteCarlo(context.Background(), nil, 10); err == nil {
		t.Error("expected error without a best fit result")
	}
	if _, err := f.MonteCarlo(context.Background(), &Result{}, 0); err == nil {
		t.Error("expected error for non-positive iterations")
	}
}
