// Package driver implements the Driver (spec.md §4.9, C7): seeding the
// Specialization Registry with every already-monomorphic definition,
// draining it in waves to fixpoint, and emitting the specialized Root.
//
// Config's shape and LoadConfig's decode-then-default sequence are grounded on internal/ext/config.go's Config/LoadConfig/
// ParseConfig, the teacher's only YAML-configuration surface.
package driver

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/registry"
)

// Config controls one Run of the pass.
type Config struct {
	// MaxSpecializationDepth bounds specialization recursion (spec.md §10
	// supplemental guard). Zero selects registry.DefaultMaxDepth.
	MaxSpecializationDepth int `yaml:"max_specialization_depth,omitempty"`

	// MaxWaveConcurrency bounds how many pending items a single wave
	// specializes concurrently. Zero selects DefaultMaxWaveConcurrency.
	MaxWaveConcurrency int `yaml:"max_wave_concurrency,omitempty"`

	// OnResidualEquality, if set, is called for every equality constraint
	// unification recorded but did not act on (spec.md §9 Open Question).
	// Not YAML-configurable: it is wired programmatically by embedders
	// that want to observe residuals rather than silently discard them.
	OnResidualEquality func(ir.EqConstraint) `yaml:"-"`
}

// DefaultMaxWaveConcurrency bounds per-wave parallelism when Config leaves
// it unset.
const DefaultMaxWaveConcurrency = 8

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		MaxSpecializationDepth: registry.DefaultMaxDepth,
		MaxWaveConcurrency:     DefaultMaxWaveConcurrency,
	}
}

// LoadConfig decodes a driver Config from YAML, applying defaults to any
// field the document leaves unset (spec.md §8; grounded on
// internal/ext/config.go's LoadConfig/ParseConfig/setDefaults sequence).
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("parsing driver config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.MaxSpecializationDepth <= 0 {
		c.MaxSpecializationDepth = registry.DefaultMaxDepth
	}
	if c.MaxWaveConcurrency <= 0 {
		c.MaxWaveConcurrency = DefaultMaxWaveConcurrency
	}
}
