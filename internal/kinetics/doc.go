// Package kinetics implements the concrete growth model variants.
//
// Every variant describes exponential biomass growth with analytical
// metabolite dynamics, optionally extended with a lag phase and first-order
// degradation:
//
//   - exponential: X(t) = X0*exp(mu*t), Mi(t) = qi*(X0/mu)*(exp(mu*t)-1) + Mi0
//   - lag: growth starts at t_lag, values hold their initial level before it
//   - degradation: metabolites decay with fixed first-order constants
//   - deg_lag: both extensions combined
//
// Variants are obtained by name from the registry:
//
//	v, err := kinetics.Get("exponential")
package kinetics
