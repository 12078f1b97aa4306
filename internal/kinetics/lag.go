package kinetics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mgarnier/fluxfit/internal/model"
)

// Lag extends the exponential variant with an estimated lag phase: before
// t_lag, biomass and metabolites hold their initial values.
type Lag struct{}

func NewLag() *Lag { return &Lag{} }

func (l *Lag) Name() string { return "lag" }

func (l *Lag) Params(m *model.Model) (*model.ParamConfig, error) {
	head := []model.BoundEntry{
		{Name: "X_0", Lower: biomassLower, Upper: biomassUpper},
		{Name: "mu", Lower: growthLower, Upper: growthUpper},
		{Name: "t_lag", Lower: 0, Upper: 0.5 * m.MaxTime()},
	}
	return buildParams(m, head, false)
}

func (l *Lag) Simulate(paramsOpti []float64, dataMatrix *mat.Dense, timeVector []float64, paramsNonOpti []float64) *mat.Dense {
	return simulateGrowth(paramsOpti, dataMatrix, timeVector, nil, true)
}
