package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mgarnier/fluxfit/internal/model"
)

const (
	DefaultModel      = "exponential"
	DefaultIterations = 100
)

type Config struct {
	Data       string               `yaml:"data"`
	Model      string               `yaml:"model"`
	Seed       int64                `yaml:"seed"`
	ScalarSD   float64              `yaml:"scalar_sd"`
	SDs        map[string]float64   `yaml:"sds"`
	Bounds     map[string][]float64 `yaml:"bounds"`
	Fixed      map[string]float64   `yaml:"fixed_parameters"`
	MonteCarlo MonteCarloConfig     `yaml:"monte_carlo"`
}

type MonteCarloConfig struct {
	Enabled    bool `yaml:"enabled"`
	Iterations int  `yaml:"iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: DefaultModel,
		MonteCarlo: MonteCarloConfig{
			Enabled:    true,
			Iterations: DefaultIterations,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StandardDevs converts the per-column sd mapping into a validated
// StandardDevs, keys sorted for a stable order.
func (c *Config) StandardDevs() (*model.StandardDevs, error) {
	if len(c.SDs) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(c.SDs))
	for name := range c.SDs {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]model.SDEntry, len(names))
	for i, name := range names {
		entries[i] = model.SDEntry{Name: name, Value: c.SDs[name]}
	}
	return model.NewStandardDevs(entries...)
}

// ApplyOverrides installs the configured bound overrides and fixed
// parameter values on a model whose variant configuration has been applied.
// Bound overrides go through the validating path, so a malformed pair in
// the file is rejected with the same errors as a runtime mutation.
func (c *Config) ApplyOverrides(m *model.Model) error {
	names := make([]string, 0, len(c.Bounds))
	for name := range c.Bounds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.Bounds.SetSlice(name, c.Bounds[name]); err != nil {
			return fmt.Errorf("config: bounds override: %w", err)
		}
	}

	for name, v := range c.Fixed {
		if _, ok := m.FixedParameters[name]; !ok {
			return fmt.Errorf("config: unknown fixed parameter %q for model %s", name, m.Name)
		}
		m.FixedParameters[name] = v
	}
	return nil
}
