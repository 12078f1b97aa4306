package optim

import (
	"gonum.org/v1/gonum/optimize"
)

// Polish refines a candidate with a local Nelder-Mead search. The cost is
// evaluated on bounds-clamped copies so the simplex never leaves the box.
// On optimizer failure the starting point is returned unchanged.
func Polish(cost func([]float64) float64, bounds []Interval, x0 []float64) ([]float64, float64) {
	clampedCost := func(x []float64) float64 {
		c := Clamp(append([]float64(nil), x...), bounds)
		return cost(c)
	}

	problem := optimize.Problem{Func: clampedCost}
	start := Clamp(append([]float64(nil), x0...), bounds)

	result, err := optimize.Minimize(problem, start, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return start, cost(start)
	}

	x := Clamp(append([]float64(nil), result.X...), bounds)
	return x, cost(x)
}
