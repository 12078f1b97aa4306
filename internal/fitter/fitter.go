package fitter

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mgarnier/fluxfit/internal/kinetics"
	"github.com/mgarnier/fluxfit/internal/model"
	"github.com/mgarnier/fluxfit/internal/optim"
)

// Default measurement standard deviations, matching the conventions of the
// original tool: biomass is trusted more than metabolite concentrations.
const (
	DefaultBiomassSD    = 0.2
	DefaultMetaboliteSD = 0.5
)

// Options tune a Fitter. The zero value gives default standard deviations
// and a zero random seed.
type Options struct {
	// SDs assigns one standard deviation per measurement column. When nil
	// and ScalarSD is zero, defaults are used.
	SDs *model.StandardDevs

	// ScalarSD broadcasts a single standard deviation over the whole
	// matrix when positive.
	ScalarSD float64

	Seed int64
}

// Fitter drives parameter estimation for one model and variant.
type Fitter struct {
	Model   *model.Model
	Variant model.Variant

	sdMatrix *mat.Dense
	seed     int64
}

// New builds a fitter: the variant's parameter configuration is applied to
// the model and the standard deviation matrix is initialized.
func New(m *model.Model, variant model.Variant, opts Options) (*Fitter, error) {
	cfg, err := variant.Params(m)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(cfg); err != nil {
		return nil, err
	}

	f := &Fitter{
		Model:   m,
		Variant: variant,
		seed:    opts.Seed,
	}
	if err := f.initSDMatrix(opts); err != nil {
		return nil, err
	}
	return f, nil
}

// initSDMatrix builds the rows x columns weighting matrix from the options:
// a scalar broadcast, a per-column mapping tiled over the rows, or the
// default per-column values.
func (f *Fitter) initSDMatrix(opts Options) error {
	rows, cols := f.Model.ExperimentalMatrix.Dims()

	if opts.ScalarSD != 0 {
		if opts.ScalarSD < 0 {
			return fmt.Errorf("%w: scalar sd %v", model.ErrNotPositive, opts.ScalarSD)
		}
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = opts.ScalarSD
		}
		f.sdMatrix = mat.NewDense(rows, cols, data)
		return nil
	}

	sds := opts.SDs
	if sds == nil {
		var err error
		sds, err = defaultSDs(f.Model.NameVector)
		if err != nil {
			return err
		}
	}

	// Keys must exactly cover the measurement columns.
	for _, name := range sds.Names() {
		if !contains(f.Model.NameVector, name) {
			return fmt.Errorf("fitter: sd key %q is not part of the data headers", name)
		}
	}
	for _, name := range f.Model.NameVector {
		if _, ok := sds.Get(name); !ok {
			return fmt.Errorf("fitter: sd key %q is missing from the sd mapping", name)
		}
	}

	f.sdMatrix = mat.NewDense(rows, cols, nil)
	for j, name := range f.Model.NameVector {
		v, _ := sds.Get(name)
		for i := 0; i < rows; i++ {
			f.sdMatrix.Set(i, j, v)
		}
	}
	return nil
}

func defaultSDs(names []string) (*model.StandardDevs, error) {
	entries := make([]model.SDEntry, len(names))
	for i, name := range names {
		v := DefaultMetaboliteSD
		if i == 0 {
			v = DefaultBiomassSD
		}
		entries[i] = model.SDEntry{Name: name, Value: v}
	}
	return model.NewStandardDevs(entries...)
}

// SDMatrix exposes the weighting matrix, mainly for inspection and tests.
func (f *Fitter) SDMatrix() *mat.Dense { return f.sdMatrix }

// Result holds the outcome of one optimization run.
type Result struct {
	Names     []string
	Values    []float64
	Cost      float64
	Simulated *mat.Dense
}

// Param returns the fitted value for a parameter name.
func (r *Result) Param(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return 0, false
}

// Optimize searches the bounded parameter space with differential evolution
// and polishes the best candidate locally. The returned simulated matrix
// carries NaN wherever the experimental matrix does.
func (f *Fitter) Optimize(ctx context.Context) (*Result, error) {
	names := f.Model.ParametersToEstimate
	bounds := make([]optim.Interval, len(names))
	x0 := make([]float64, len(names))
	for i, name := range names {
		b, ok := f.Model.Bounds.Get(name)
		if !ok {
			return nil, &model.ModelError{
				Model:  f.Model.Name,
				Reason: fmt.Sprintf("no bounds for estimated parameter %q", name),
			}
		}
		bounds[i] = optim.Interval{Lower: b.Lower, Upper: b.Upper}
		x0[i] = f.Model.InitialValues[name]
	}

	costFn := f.costFunc()

	de := optim.NewDifferentialEvolution(f.seed)
	best, bestCost, err := de.Run(ctx, costFn, bounds, x0)
	if err != nil {
		return nil, err
	}
	if px, pc := optim.Polish(costFn, bounds, best); pc < bestCost {
		best, bestCost = px, pc
	}

	sim := f.Variant.Simulate(best, f.Model.ExperimentalMatrix, f.Model.TimeVector, f.degVector())
	maskNaN(sim, f.Model.ExperimentalMatrix)

	return &Result{
		Names:     append([]string(nil), names...),
		Values:    best,
		Cost:      bestCost,
		Simulated: sim,
	}, nil
}

// degVector reads the degradation constants out of the current fixed
// parameters. Computed on demand so configuration overrides applied after
// construction are honored.
func (f *Fitter) degVector() []float64 {
	return kinetics.DegVector(f.Model)
}

// costFunc returns the weighted least squares objective against the
// experimental matrix.
func (f *Fitter) costFunc() func([]float64) float64 {
	exp := f.Model.ExperimentalMatrix
	time := f.Model.TimeVector
	deg := f.degVector()
	return func(p []float64) float64 {
		sim := f.Variant.Simulate(p, exp, time, deg)
		return Cost(sim, exp, f.sdMatrix)
	}
}

// Cost is the weighted residual sum of squares over all cells with an
// observed value: sum(((sim - exp) / sd)^2), skipping NaN observations.
func Cost(sim, exp, sd *mat.Dense) float64 {
	rows, cols := exp.Dims()
	total := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			o := exp.At(i, j)
			if math.IsNaN(o) {
				continue
			}
			r := (sim.At(i, j) - o) / sd.At(i, j)
			total += r * r
		}
	}
	return total
}

// maskNaN copies the NaN pattern of ref into m.
func maskNaN(m, ref *mat.Dense) {
	rows, cols := ref.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(ref.At(i, j)) {
				m.Set(i, j, math.NaN())
			}
		}
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
