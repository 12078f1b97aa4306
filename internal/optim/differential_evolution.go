package optim

import (
	"context"
	"math"
	"math/rand"
)

// Interval is a closed search interval for one parameter.
type Interval struct {
	Lower float64
	Upper float64
}

// DifferentialEvolution is a rand/1/bin global minimizer over a box-bounded
// parameter space. Candidates are clipped to the bounds, so the cost
// function is only ever evaluated inside the box.
type DifferentialEvolution struct {
	PopSize     int
	Generations int
	Weight      float64
	Crossover   float64
	Tolerance   float64
	Seed        int64
}

// NewDifferentialEvolution returns a minimizer with defaults sized for the
// small parameter counts of analytical growth models.
func NewDifferentialEvolution(seed int64) *DifferentialEvolution {
	return &DifferentialEvolution{
		PopSize:     0, // 0 means 10 per dimension, at least 20
		Generations: 300,
		Weight:      0.8,
		Crossover:   0.9,
		Tolerance:   1e-10,
		Seed:        seed,
	}
}

// Run minimizes cost over bounds, seeding one population member from x0
// when it lies inside the box. It returns the best candidate and its cost.
// The context is checked once per generation.
func (de *DifferentialEvolution) Run(ctx context.Context, cost func([]float64) float64, bounds []Interval, x0 []float64) ([]float64, float64, error) {
	dim := len(bounds)
	pop := de.PopSize
	if pop <= 0 {
		pop = 10 * dim
		if pop < 20 {
			pop = 20
		}
	}
	rng := rand.New(rand.NewSource(de.Seed))

	candidates := make([][]float64, pop)
	costs := make([]float64, pop)
	for i := range candidates {
		c := make([]float64, dim)
		for j, b := range bounds {
			c[j] = b.Lower + rng.Float64()*(b.Upper-b.Lower)
		}
		candidates[i] = c
	}
	if len(x0) == dim {
		candidates[0] = Clamp(append([]float64(nil), x0...), bounds)
	}
	for i, c := range candidates {
		costs[i] = cost(c)
	}

	best, bestCost := bestOf(candidates, costs)

	trial := make([]float64, dim)
	for gen := 0; gen < de.Generations; gen++ {
		select {
		case <-ctx.Done():
			return best, bestCost, ctx.Err()
		default:
		}

		for i := 0; i < pop; i++ {
			a, b, c := pick3(rng, pop, i)
			forced := rng.Intn(dim)
			for j := 0; j < dim; j++ {
				if j == forced || rng.Float64() < de.Crossover {
					trial[j] = candidates[a][j] + de.Weight*(candidates[b][j]-candidates[c][j])
				} else {
					trial[j] = candidates[i][j]
				}
				if trial[j] < bounds[j].Lower {
					trial[j] = bounds[j].Lower
				} else if trial[j] > bounds[j].Upper {
					trial[j] = bounds[j].Upper
				}
			}
			if tc := cost(trial); tc < costs[i] {
				copy(candidates[i], trial)
				costs[i] = tc
				if tc < bestCost {
					bestCost = tc
					copy(best, candidates[i])
				}
			}
		}

		if converged(costs, de.Tolerance) {
			break
		}
	}
	return best, bestCost, nil
}

// Clamp clips x into the bounds box in place and returns it.
func Clamp(x []float64, bounds []Interval) []float64 {
	for j, b := range bounds {
		if j >= len(x) {
			break
		}
		if x[j] < b.Lower {
			x[j] = b.Lower
		} else if x[j] > b.Upper {
			x[j] = b.Upper
		}
	}
	return x
}

func bestOf(candidates [][]float64, costs []float64) ([]float64, float64) {
	bi := 0
	for i, c := range costs {
		if c < costs[bi] {
			bi = i
		}
	}
	best := append([]float64(nil), candidates[bi]...)
	return best, costs[bi]
}

func pick3(rng *rand.Rand, pop, exclude int) (int, int, int) {
	idx := [3]int{}
	for k := 0; k < 3; {
		n := rng.Intn(pop)
		if n == exclude || (k > 0 && n == idx[0]) || (k > 1 && n == idx[1]) {
			continue
		}
		idx[k] = n
		k++
	}
	return idx[0], idx[1], idx[2]
}

func converged(costs []float64, tol float64) bool {
	min, max := math.Inf(1), math.Inf(-1)
	for _, c := range costs {
		if math.IsNaN(c) {
			return false
		}
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	return max-min <= tol*(1+math.Abs(min))
}
