// Package config loads and validates engine session settings from an
// optional flint.toml file. Grounded on smf's internal/parser/toml
// package: a BurntSushi/toml decode into a tagged struct, followed by
// a validation pass that turns bad values into descriptive errors.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// supportedCollation is the only collation the engine actually runs
// with: locale-insensitive ASCII-case-insensitive comparison, fixed
// by the value model's total order. Config only surfaces this policy;
// it never switches on it.
const supportedCollation = "en_US"

// Config carries the session defaults an embedding CLI or application
// can tune without touching engine code.
type Config struct {
	// Collation documents the fixed comparison policy. Any value other
	// than the default is rejected at load time.
	Collation string

	// DefaultVarcharMax is applied when a CREATE TABLE column omits an
	// explicit VARCHAR length.
	DefaultVarcharMax int

	// StrictTypeCoercion toggles whether inserting a non-integer
	// numeric literal into an INTEGER column is rejected. The engine
	// only ever runs with this true; it exists so a CLI can surface
	// the policy and so an explicit false is caught as a config error
	// rather than silently ignored.
	StrictTypeCoercion bool
}

// Default returns the configuration used when no flint.toml is present.
func Default() Config {
	return Config{
		Collation:          supportedCollation,
		DefaultVarcharMax:  255,
		StrictTypeCoercion: true,
	}
}

// tomlConfig is the raw [engine] section of flint.toml.
type tomlConfig struct {
	Engine tomlEngine `toml:"engine"`
}

type tomlEngine struct {
	Collation          string `toml:"collation"`
	DefaultVarcharMax  int    `toml:"default_varchar_max"`
	StrictTypeCoercion *bool  `toml:"strict_type_coercion"`
}

// LoadFile reads and validates flint.toml at path. A missing file is
// not an error: Default() is returned instead.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes and validates a flint.toml document from r.
func Load(r io.Reader) (Config, error) {
	var raw tomlConfig
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("config: decode error: %w", err)
	}

	cfg := Default()

	if raw.Engine.Collation != "" {
		cfg.Collation = raw.Engine.Collation
	}
	if raw.Engine.DefaultVarcharMax != 0 {
		cfg.DefaultVarcharMax = raw.Engine.DefaultVarcharMax
	}
	if raw.Engine.StrictTypeCoercion != nil {
		cfg.StrictTypeCoercion = *raw.Engine.StrictTypeCoercion
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if !strings.EqualFold(c.Collation, supportedCollation) {
		return fmt.Errorf("config: unsupported collation %q; only %q is supported", c.Collation, supportedCollation)
	}
	if c.DefaultVarcharMax <= 0 {
		return fmt.Errorf("config: default_varchar_max must be positive, got %d", c.DefaultVarcharMax)
	}
	if !c.StrictTypeCoercion {
		return fmt.Errorf("config: strict_type_coercion cannot be disabled; the engine always rejects non-integer literals in INTEGER columns")
	}
	return nil
}
