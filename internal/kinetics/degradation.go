package kinetics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mgarnier/fluxfit/internal/model"
)

// Degradation extends the exponential variant with fixed first-order
// degradation constants, one per metabolite, carried as fixed parameters
// named "<metabolite>_k".
type Degradation struct{}

func NewDegradation() *Degradation { return &Degradation{} }

func (d *Degradation) Name() string { return "degradation" }

func (d *Degradation) Params(m *model.Model) (*model.ParamConfig, error) {
	head := []model.BoundEntry{
		{Name: "X_0", Lower: biomassLower, Upper: biomassUpper},
		{Name: "mu", Lower: growthLower, Upper: growthUpper},
	}
	return buildParams(m, head, true)
}

func (d *Degradation) Simulate(paramsOpti []float64, dataMatrix *mat.Dense, timeVector []float64, paramsNonOpti []float64) *mat.Dense {
	return simulateGrowth(paramsOpti, dataMatrix, timeVector, paramsNonOpti, false)
}

// DegLag combines the lag phase and degradation extensions. This mirrors
// the richest variant of the original tool.
type DegLag struct{}

func NewDegLag() *DegLag { return &DegLag{} }

func (d *DegLag) Name() string { return "deg_lag" }

func (d *DegLag) Params(m *model.Model) (*model.ParamConfig, error) {
	head := []model.BoundEntry{
		{Name: "X_0", Lower: biomassLower, Upper: biomassUpper},
		{Name: "mu", Lower: growthLower, Upper: growthUpper},
		{Name: "t_lag", Lower: 0, Upper: 0.5 * m.MaxTime()},
	}
	return buildParams(m, head, true)
}

func (d *DegLag) Simulate(paramsOpti []float64, dataMatrix *mat.Dense, timeVector []float64, paramsNonOpti []float64) *mat.Dense {
	return simulateGrowth(paramsOpti, dataMatrix, timeVector, paramsNonOpti, true)
}
