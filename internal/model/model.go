package model

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/mgarnier/fluxfit/internal/dataset"
)

// Variant is the contract a concrete kinetic model implements. A variant is
// selected by name at construction time; the fitter never inspects its
// concrete type.
type Variant interface {
	// Name identifies the variant in the registry and in run metadata.
	Name() string

	// Params builds the parameter configuration for m: which parameters
	// are estimated, which are held fixed, the bounds covering the
	// estimated set and the default initial values.
	Params(m *Model) (*ParamConfig, error)

	// Simulate computes the model trajectory for one candidate parameter
	// vector. dataMatrix is used for shape only; paramsNonOpti holds the
	// fixed parameter values in metabolite order. The returned matrix has
	// the same shape as dataMatrix. Simulate is pure: it must not retain
	// or mutate its inputs, since the optimizer calls it in a tight loop.
	Simulate(paramsOpti []float64, dataMatrix *mat.Dense, timeVector []float64, paramsNonOpti []float64) *mat.Dense
}

// ParamConfig is the result of Variant.Params: the full parameter split for
// one model instance.
type ParamConfig struct {
	ParametersToEstimate []string
	FixedParameters      map[string]float64
	Bounds               *Bounds
	InitialValues        map[string]float64
}

// Model holds the experimental data a kinetic model is fitted against,
// together with the vectors derived from it and the parameter metadata
// populated by a Variant.
type Model struct {
	Name string

	data *dataset.Dataset

	// Derived from the dataset; recomputed as a unit by SetData.
	TimeVector         []float64
	NameVector         []string
	ExperimentalMatrix *mat.Dense
	Metabolites        []string

	ParametersToEstimate []string
	FixedParameters      map[string]float64
	Bounds               *Bounds
	InitialValues        map[string]float64
}

// New constructs a model from a dataset and derives the time vector, name
// vector, experimental matrix and metabolite list.
func New(name string, ds *dataset.Dataset) (*Model, error) {
	m := &Model{Name: name}
	if err := m.SetData(ds); err != nil {
		return nil, err
	}
	return m, nil
}

// Data returns the current dataset reference.
func (m *Model) Data() *dataset.Dataset { return m.data }

// SetData replaces the dataset and recomputes every derived field. All
// derived values are computed into locals first; the model is only updated
// once the whole derivation succeeded, so a failed replacement leaves the
// previous state intact.
func (m *Model) SetData(ds *dataset.Dataset) error {
	if ds == nil {
		return fmt.Errorf("model %s: nil dataset", m.Name)
	}
	names := ds.Names()
	if len(names) == 0 {
		return dataset.ErrNoMeasurements
	}
	time := ds.Time()
	matrix := ds.Matrix()

	// First measurement column is the biomass reference by convention.
	metabolites := append([]string(nil), names[1:]...)

	m.data = ds
	m.TimeVector = time
	m.NameVector = names
	m.ExperimentalMatrix = matrix
	m.Metabolites = metabolites
	return nil
}

// Apply installs a parameter configuration after checking the variant
// contract: estimated and fixed names must not overlap, and bounds must
// cover every estimated parameter.
func (m *Model) Apply(cfg *ParamConfig) error {
	if cfg == nil {
		return &ModelError{Model: m.Name, Reason: "nil parameter configuration"}
	}
	if cfg.Bounds == nil {
		return &ModelError{Model: m.Name, Reason: "parameter configuration has no bounds"}
	}
	for _, name := range cfg.ParametersToEstimate {
		if _, fixed := cfg.FixedParameters[name]; fixed {
			return &ModelError{
				Model:  m.Name,
				Reason: fmt.Sprintf("parameter %q is both estimated and fixed", name),
			}
		}
		if !cfg.Bounds.Has(name) {
			return &ModelError{
				Model:  m.Name,
				Reason: fmt.Sprintf("no bounds for estimated parameter %q", name),
			}
		}
	}
	m.ParametersToEstimate = append([]string(nil), cfg.ParametersToEstimate...)
	m.FixedParameters = cfg.FixedParameters
	m.Bounds = cfg.Bounds
	m.InitialValues = cfg.InitialValues
	return nil
}

// MaxTime returns the largest timestamp in the time vector.
func (m *Model) MaxTime() float64 {
	max := 0.0
	for _, t := range m.TimeVector {
		if t > max {
			max = t
		}
	}
	return max
}

// String is a diagnostic dump of the model state. Nothing parses it.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", m.Name)
	fmt.Fprintf(&b, "Time vector: %v\n", m.TimeVector)
	fmt.Fprintf(&b, "Name vector: %v\n", m.NameVector)
	fmt.Fprintf(&b, "Metabolites: %v\n", m.Metabolites)
	if m.ExperimentalMatrix != nil {
		fmt.Fprintf(&b, "Experimental matrix:\n%v\n",
			mat.Formatted(m.ExperimentalMatrix, mat.Prefix(""), mat.Squeeze()))
	}
	fmt.Fprintf(&b, "Parameters to estimate: %v\n", m.ParametersToEstimate)
	fmt.Fprintf(&b, "Fixed parameters: %v\n", m.FixedParameters)
	if m.Bounds != nil {
		fmt.Fprintf(&b, "Bounds: %v\n", m.Bounds)
	}
	return b.String()
}
