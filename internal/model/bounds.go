package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bound is a (lower, upper) pair limiting one parameter during optimization.
type Bound struct {
	Lower float64
	Upper float64
}

// BoundEntry names a bound pair. Used for ordered construction.
type BoundEntry struct {
	Name  string
	Lower float64
	Upper float64
}

// Bounds is an ordered mapping from parameter name to a validated bound
// pair. Every write goes through Set; there is no way to store an invalid
// pair.
type Bounds struct {
	names []string
	pairs map[string]Bound
}

// NewBounds builds a Bounds mapping from entries, in order. Each entry is
// written through Set, so construction and later mutation share one
// validation rule.
func NewBounds(entries ...BoundEntry) (*Bounds, error) {
	b := &Bounds{pairs: make(map[string]Bound)}
	for _, e := range entries {
		if err := b.Set(e.Name, e.Lower, e.Upper); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Set validates and stores a bound pair. On failure the mapping is left
// unmodified. Setting an existing name replaces its pair without changing
// its position.
func (b *Bounds) Set(name string, lower, upper float64) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if err := checkNumeric(name, lower); err != nil {
		return err
	}
	if err := checkNumeric(name, upper); err != nil {
		return err
	}
	if lower > upper {
		return fmt.Errorf("%w: %q has lower %v > upper %v", ErrBoundOrder, name, lower, upper)
	}
	if _, ok := b.pairs[name]; !ok {
		b.names = append(b.names, name)
	}
	b.pairs[name] = Bound{Lower: lower, Upper: upper}
	return nil
}

// SetSlice validates and stores a bound pair given as a slice, rejecting
// any arity other than two. This is the write path used when pairs arrive
// from configuration files.
func (b *Bounds) SetSlice(name string, pair []float64) error {
	if len(pair) != 2 {
		return fmt.Errorf("%w: %q has %d", ErrBoundArity, name, len(pair))
	}
	return b.Set(name, pair[0], pair[1])
}

// SetLiteral parses lower and upper from plain numeric literals and stores
// the pair. Anything beyond a literal (expressions, units) is rejected.
func (b *Bounds) SetLiteral(name, lower, upper string) error {
	lo, err := parseLiteral(name, lower)
	if err != nil {
		return err
	}
	hi, err := parseLiteral(name, upper)
	if err != nil {
		return err
	}
	return b.Set(name, lo, hi)
}

// Get returns the pair for name, reporting whether it exists.
func (b *Bounds) Get(name string) (Bound, bool) {
	p, ok := b.pairs[name]
	return p, ok
}

// Has reports whether name has a bound pair.
func (b *Bounds) Has(name string) bool {
	_, ok := b.pairs[name]
	return ok
}

// Len returns the number of entries.
func (b *Bounds) Len() int { return len(b.names) }

// Names returns the parameter names in mapping order.
func (b *Bounds) Names() []string { return append([]string(nil), b.names...) }

// Pairs returns all bound pairs in mapping order, the flat collection an
// external optimizer consumes.
func (b *Bounds) Pairs() []Bound {
	out := make([]Bound, 0, len(b.names))
	for _, name := range b.names {
		out = append(out, b.pairs[name])
	}
	return out
}

func (b *Bounds) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		p := b.pairs[name]
		fmt.Fprintf(&sb, "%s: (%v, %v)", name, p.Lower, p.Upper)
	}
	sb.WriteByte('}')
	return sb.String()
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty key", ErrEmptyName)
	}
	return name, nil
}

func checkNumeric(name string, v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: %q has NaN", ErrNotNumeric, name)
	}
	return nil
}

// parseLiteral accepts plain numeric literals only.
func parseLiteral(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q has value %q", ErrNotNumeric, name, s)
	}
	return v, nil
}
