package model

import (
	"fmt"
	"math"
	"strings"
)

// SDEntry names a standard deviation. Used for ordered construction.
type SDEntry struct {
	Name  string
	Value float64
}

// StandardDevs is an ordered mapping from quantity name to a strictly
// positive measurement standard deviation, used to weight residuals during
// fitting. The Vector view is cached and invalidated on every mutation.
type StandardDevs struct {
	names  []string
	values map[string]float64

	vector []float64
	dirty  bool
}

// NewStandardDevs builds a StandardDevs mapping from entries, in order,
// writing each through Set.
func NewStandardDevs(entries ...SDEntry) (*StandardDevs, error) {
	sd := &StandardDevs{values: make(map[string]float64), dirty: true}
	for _, e := range entries {
		if err := sd.Set(e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	return sd, nil
}

// Set validates and stores a standard deviation. On failure the mapping is
// left unmodified. Any successful write marks the cached vector stale.
func (s *StandardDevs) Set(name string, value float64) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %q has value %v", ErrNotNumeric, name, value)
	}
	if value <= 0 {
		return fmt.Errorf("%w: %q has value %v", ErrNotPositive, name, value)
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
	s.dirty = true
	return nil
}

// SetLiteral parses the value from a plain numeric literal and stores it.
func (s *StandardDevs) SetLiteral(name, value string) error {
	v, err := parseLiteral(name, value)
	if err != nil {
		return err
	}
	return s.Set(name, v)
}

// Get returns the standard deviation for name, reporting whether it exists.
func (s *StandardDevs) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of entries.
func (s *StandardDevs) Len() int { return len(s.names) }

// Names returns the quantity names in mapping order.
func (s *StandardDevs) Names() []string { return append([]string(nil), s.names...) }

// Vector returns the standard deviations in mapping order. The slice is
// computed lazily and reused until the next mutation; callers must not
// modify it.
func (s *StandardDevs) Vector() []float64 {
	if s.dirty || s.vector == nil {
		s.vector = make([]float64, 0, len(s.names))
		for _, name := range s.names {
			s.vector = append(s.vector, s.values[name])
		}
		s.dirty = false
	}
	return s.vector
}

func (s *StandardDevs) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", name, s.values[name])
	}
	sb.WriteByte('}')
	return sb.String()
}
