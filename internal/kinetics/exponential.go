package kinetics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mgarnier/fluxfit/internal/model"
)

// Exponential is the plain steady-state growth variant: no lag phase, no
// degradation.
type Exponential struct{}

func NewExponential() *Exponential { return &Exponential{} }

func (e *Exponential) Name() string { return "exponential" }

func (e *Exponential) Params(m *model.Model) (*model.ParamConfig, error) {
	head := []model.BoundEntry{
		{Name: "X_0", Lower: biomassLower, Upper: biomassUpper},
		{Name: "mu", Lower: growthLower, Upper: growthUpper},
	}
	return buildParams(m, head, false)
}

func (e *Exponential) Simulate(paramsOpti []float64, dataMatrix *mat.Dense, timeVector []float64, paramsNonOpti []float64) *mat.Dense {
	return simulateGrowth(paramsOpti, dataMatrix, timeVector, nil, false)
}
