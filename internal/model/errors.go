package model

import "fmt"

// Validation errors for bounds and standard deviation mappings.
var (
	// ErrBoundOrder indicates a bound pair with lower > upper.
	ErrBoundOrder = fmt.Errorf("model: lower bound greater than upper bound")

	// ErrBoundArity indicates a bound pair without exactly two elements.
	ErrBoundArity = fmt.Errorf("model: bound pair must have exactly two elements")

	// ErrNotNumeric indicates a value that is neither numeric nor a numeric literal.
	ErrNotNumeric = fmt.Errorf("model: value is not numeric")

	// ErrNotPositive indicates a standard deviation that is not strictly positive.
	ErrNotPositive = fmt.Errorf("model: standard deviation must be greater than zero")

	// ErrEmptyName indicates a mapping key that does not coerce to a usable name.
	ErrEmptyName = fmt.Errorf("model: could not coerce key into string")
)

// ModelError signals an invalid model configuration, such as a parameter
// listed both as estimated and fixed, or bounds that do not cover every
// estimated parameter. It carries a descriptive message only.
type ModelError struct {
	Model  string
	Reason string
}

func (e *ModelError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("model: %s", e.Reason)
	}
	return fmt.Sprintf("model %s: %s", e.Model, e.Reason)
}
