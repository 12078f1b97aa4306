package fitter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareResult reports the goodness-of-fit test at the optimum.
type ChiSquareResult struct {
	Khi2         float64
	Measurements int
	Parameters   int
	DOF          int
	PValue       float64
	// AcceptedAt95 is true when the fit cannot be rejected at the 95%
	// confidence level given the measurement standard deviations.
	AcceptedAt95 bool
}

// Verdict is the human-readable interpretation of the test.
func (r *ChiSquareResult) Verdict() string {
	if r.AcceptedAt95 {
		return fmt.Sprintf("at 95%% confidence the model fits the data within the measurement SDs (p = %.4f)", r.PValue)
	}
	return fmt.Sprintf("at 95%% confidence the model does not fit the data within the measurement SDs (p = %.4f)", r.PValue)
}

// ChiSquareTest compares the optimal cost against a chi-squared
// distribution with one degree of freedom per observed value minus one per
// estimated parameter.
func (f *Fitter) ChiSquareTest(best *Result) (*ChiSquareResult, error) {
	if best == nil {
		return nil, fmt.Errorf("fitter: chi-square test requires a best fit result")
	}

	rows, cols := f.Model.ExperimentalMatrix.Dims()
	measurements := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !math.IsNaN(f.Model.ExperimentalMatrix.At(i, j)) {
				measurements++
			}
		}
	}

	dof := measurements - len(best.Values)
	if dof <= 0 {
		return nil, fmt.Errorf("fitter: %d measurements for %d parameters leaves no degrees of freedom",
			measurements, len(best.Values))
	}

	dist := distuv.ChiSquared{K: float64(dof)}
	p := dist.CDF(best.Cost)

	return &ChiSquareResult{
		Khi2:         best.Cost,
		Measurements: measurements,
		Parameters:   len(best.Values),
		DOF:          dof,
		PValue:       p,
		AcceptedAt95: p < 0.95,
	}, nil
}
