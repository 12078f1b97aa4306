// Package model provides the core entities for metabolic flux fitting.
//
// The package defines the data-holding and validation layer shared by every
// kinetic model variant:
//
//   - [Model]: experimental data plus derived vectors and parameter metadata
//   - [Variant]: contract implemented by concrete kinetic models
//   - [Bounds]: ordered, validated name -> (lower, upper) mapping
//   - [StandardDevs]: ordered, validated name -> positive sd mapping
//   - [ModelError]: invalid model configuration signal
//
// # Example
//
//	ds, _ := dataset.Open("data.csv")
//	m, _ := model.New("exponential", ds)
//	cfg, _ := variant.Params(m)
//	err := m.Apply(cfg)
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent mutation. Each
// instance is owned by a single caller by convention.
package model
