package kinetics

import (
	"fmt"
	"sort"

	"github.com/mgarnier/fluxfit/internal/model"
)

var variants = map[string]func() model.Variant{
	"exponential": func() model.Variant { return NewExponential() },
	"lag":         func() model.Variant { return NewLag() },
	"degradation": func() model.Variant { return NewDegradation() },
	"deg_lag":     func() model.Variant { return NewDegLag() },
}

// Get returns a fresh variant by name.
func Get(name string) (model.Variant, error) {
	fn, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("kinetics: unknown model variant: %s", name)
	}
	return fn(), nil
}

// List returns the registered variant names, sorted.
func List() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
