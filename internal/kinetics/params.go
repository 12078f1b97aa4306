package kinetics

import (
	"github.com/mgarnier/fluxfit/internal/model"
)

// Default bounds shared by every variant.
const (
	defaultInit = 1.0

	biomassLower = 1e-3
	biomassUpper = 10
	growthLower  = 1e-3
	growthUpper  = 3
	concLower    = 1e-6
	concUpper    = 50
	fluxLower    = -50
	fluxUpper    = 50
)

// buildParams assembles the shared parameter configuration: head parameters
// first, then an (M0, q) pair per metabolite in metabolite order. When
// withDeg is set, one fixed degradation constant per metabolite is added
// (default 0, overridable through the fixed parameter map).
func buildParams(m *model.Model, head []model.BoundEntry, withDeg bool) (*model.ParamConfig, error) {
	entries := append([]model.BoundEntry(nil), head...)
	names := make([]string, 0, len(head)+2*len(m.Metabolites))
	for _, e := range head {
		names = append(names, e.Name)
	}
	for _, met := range m.Metabolites {
		names = append(names, met+"_M0", met+"_q")
		entries = append(entries,
			model.BoundEntry{Name: met + "_M0", Lower: concLower, Upper: concUpper},
			model.BoundEntry{Name: met + "_q", Lower: fluxLower, Upper: fluxUpper},
		)
	}

	bounds, err := model.NewBounds(entries...)
	if err != nil {
		return nil, err
	}

	fixed := map[string]float64{}
	if withDeg {
		for _, met := range m.Metabolites {
			fixed[met+"_k"] = 0
		}
	}

	init := make(map[string]float64, len(names))
	for _, name := range names {
		init[name] = defaultInit
	}

	return &model.ParamConfig{
		ParametersToEstimate: names,
		FixedParameters:      fixed,
		Bounds:               bounds,
		InitialValues:        init,
	}, nil
}

// DegVector extracts the degradation constants from a model's fixed
// parameters, one per metabolite in metabolite order. Metabolites without a
// constant degrade with k = 0.
func DegVector(m *model.Model) []float64 {
	deg := make([]float64, len(m.Metabolites))
	for i, met := range m.Metabolites {
		deg[i] = m.FixedParameters[met+"_k"]
	}
	return deg
}
