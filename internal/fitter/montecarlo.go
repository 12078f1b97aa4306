package fitter

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mgarnier/fluxfit/internal/optim"
)

// ParamStats summarizes the Monte-Carlo distribution of one parameter.
type ParamStats struct {
	Name    string
	Optimal float64
	Mean    float64
	SD      float64
	Median  float64
	LowCI   float64 // 2.5th percentile
	HighCI  float64 // 97.5th percentile
}

// MonteCarloResult holds per-parameter statistics and per-cell confidence
// intervals on the simulated matrix.
type MonteCarloResult struct {
	Iterations int
	Params     []ParamStats
	LowerCI    *mat.Dense
	UpperCI    *mat.Dense
}

// MonteCarlo estimates parameter uncertainty: the best-fit simulated matrix
// is perturbed with gaussian noise drawn from the sd matrix, each replicate
// is re-optimized locally from the best fit, and the resulting parameter
// and matrix distributions are summarized. Requires a prior Optimize
// result.
func (f *Fitter) MonteCarlo(ctx context.Context, best *Result, iterations int) (*MonteCarloResult, error) {
	if best == nil {
		return nil, fmt.Errorf("fitter: monte carlo requires a best fit result")
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("fitter: monte carlo iterations must be positive, got %d", iterations)
	}

	names := best.Names
	bounds := make([]optim.Interval, len(names))
	for i, name := range names {
		b, _ := f.Model.Bounds.Get(name)
		bounds[i] = optim.Interval{Lower: b.Lower, Upper: b.Upper}
	}

	rows, cols := f.Model.ExperimentalMatrix.Dims()
	rng := rand.New(rand.NewSource(f.seed + 1))
	time := f.Model.TimeVector
	deg := f.degVector()

	// Noise-free reference trajectory at the optimum.
	reference := f.Variant.Simulate(best.Values, f.Model.ExperimentalMatrix, time, deg)

	paramSamples := make([][]float64, len(names))
	for i := range paramSamples {
		paramSamples[i] = make([]float64, 0, iterations)
	}
	cellSamples := make([][]float64, rows*cols)
	for i := range cellSamples {
		cellSamples[i] = make([]float64, 0, iterations)
	}

	noisy := mat.NewDense(rows, cols, nil)
	warm := append([]float64(nil), best.Values...)

	for it := 0; it < iterations; it++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				noisy.Set(i, j, reference.At(i, j)+rng.NormFloat64()*f.sdMatrix.At(i, j))
			}
		}

		costFn := func(p []float64) float64 {
			sim := f.Variant.Simulate(p, noisy, time, deg)
			return Cost(sim, noisy, f.sdMatrix)
		}
		x, _ := optim.Polish(costFn, bounds, warm)
		copy(warm, x)

		sim := f.Variant.Simulate(x, noisy, time, deg)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				cellSamples[i*cols+j] = append(cellSamples[i*cols+j], sim.At(i, j))
			}
		}
		for i, v := range x {
			paramSamples[i] = append(paramSamples[i], v)
		}
	}

	out := &MonteCarloResult{
		Iterations: iterations,
		Params:     make([]ParamStats, len(names)),
		LowerCI:    mat.NewDense(rows, cols, nil),
		UpperCI:    mat.NewDense(rows, cols, nil),
	}
	for i, name := range names {
		s := paramSamples[i]
		sorted := append([]float64(nil), s...)
		sort.Float64s(sorted)
		out.Params[i] = ParamStats{
			Name:    name,
			Optimal: best.Values[i],
			Mean:    stat.Mean(s, nil),
			SD:      stat.StdDev(s, nil),
			Median:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
			LowCI:   stat.Quantile(0.025, stat.Empirical, sorted, nil),
			HighCI:  stat.Quantile(0.975, stat.Empirical, sorted, nil),
		}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sorted := append([]float64(nil), cellSamples[i*cols+j]...)
			sort.Float64s(sorted)
			lo := stat.Quantile(0.025, stat.Empirical, sorted, nil)
			hi := stat.Quantile(0.975, stat.Empirical, sorted, nil)
			if math.IsNaN(f.Model.ExperimentalMatrix.At(i, j)) {
				lo, hi = math.NaN(), math.NaN()
			}
			out.LowerCI.Set(i, j, lo)
			out.UpperCI.Set(i, j, hi)
		}
	}
	return out, nil
}
