package kinetics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// simulateGrowth evaluates the analytical growth equations into a fresh
// matrix with the shape of dataMatrix. Column 0 is biomass, the remaining
// columns follow the metabolite order of the parameter layout. deg holds
// one first-order degradation constant per metabolite (nil means none).
// Before tLag every quantity holds its initial value.
func simulateGrowth(params []float64, dataMatrix *mat.Dense, timeVector []float64, deg []float64, withLag bool) *mat.Dense {
	rows, cols := dataMatrix.Dims()
	sim := mat.NewDense(rows, cols, nil)

	x0 := params[0]
	mu := params[1]
	tLag := 0.0
	base := 2
	if withLag {
		tLag = params[2]
		base = 3
	}

	n := rows
	if len(timeVector) < n {
		n = len(timeVector)
	}

	for i := 0; i < n; i++ {
		t := timeVector[i]
		if t < tLag {
			sim.Set(i, 0, x0)
		} else {
			sim.Set(i, 0, x0*math.Exp(mu*(t-tLag)))
		}

		for j := 1; j < cols; j++ {
			m0 := params[base+2*(j-1)]
			q := params[base+2*(j-1)+1]
			if t < tLag {
				sim.Set(i, j, m0)
				continue
			}
			k := 0.0
			if j-1 < len(deg) {
				k = deg[j-1]
			}
			var v float64
			if k == 0 {
				v = q*(x0/mu)*(math.Exp(mu*(t-tLag))-1) + m0
			} else {
				v = q*(x0/(mu+k))*(math.Exp(mu*(t-tLag))-math.Exp(-k*(t-tLag))) + m0*math.Exp(-k*t)
			}
			sim.Set(i, j, v)
		}
	}
	return sim
}
