package surface

import (
	"fmt"
	"math"
	"os"

	"github.com/alexiusacademia/gowing/internal/material"
	"gopkg.in/yaml.v3"
)

// FromMap builds a Config from a generic key/value mapping.
//
// Required keys are num_nodes, num_chordwise_panels, num_spanwise_panels and
// symmetry. Unrecognised keys are ignored so a full surface dictionary can be
// passed through unchanged. When weighting is absent it is inferred from the
// panel and node counts.
func FromMap(m map[string]any) (Config, error) {
	cfg := Config{
		Name:      defaultName,
		FEMOrigin: material.FEMOrigin,
		Material:  material.Defaults(),
	}

	var err error
	if cfg.NumNodes, err = requireInt(m, KeyNumNodes); err != nil {
		return Config{}, err
	}
	if cfg.NumChordwise, err = requireInt(m, KeyChordwise); err != nil {
		return Config{}, err
	}
	if cfg.NumSpanwise, err = requireInt(m, KeySpanwise); err != nil {
		return Config{}, err
	}
	if cfg.Symmetry, err = requireBool(m, KeySymmetry); err != nil {
		return Config{}, err
	}

	if v, ok := m[KeyName]; ok {
		s, ok := v.(string)
		if !ok {
			return Config{}, &ConfigError{Field: KeyName, Msg: fmt.Sprintf("expected a string, got %T", v)}
		}
		cfg.Name = s
	}

	if v, ok := m[KeyWeighting]; ok {
		s, ok := v.(string)
		if !ok {
			return Config{}, &ConfigError{Field: KeyWeighting, Msg: fmt.Sprintf("expected a string, got %T", v)}
		}
		cfg.Weighting = Weighting(s)
	} else {
		cfg.Weighting = inferWeighting(cfg.NumNodes, cfg.NumSpanwise)
		if cfg.Weighting == "" {
			return Config{}, &ConfigError{
				Field: KeySpanwise,
				Msg:   fmt.Sprintf("%d strips fit neither nearest nor linear weighting for %d nodes", cfg.NumSpanwise, cfg.NumNodes),
			}
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{KeyFEMOrigin, &cfg.FEMOrigin},
		{KeyE, &cfg.Material.E},
		{KeyG, &cfg.Material.G},
		{KeyYield, &cfg.Material.Yield},
		{KeyMrho, &cfg.Material.Mrho},
	}
	for _, f := range floats {
		if err := optionalFloat(m, f.key, f.dst); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses a YAML (or JSON) document into a Config
func Decode(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("failed to parse surface config: %w", err)
	}
	if m == nil {
		return Config{}, &ConfigError{Field: KeyNumNodes, Msg: "missing required key"}
	}
	return FromMap(m)
}

// Load reads a surface configuration file
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read surface config: %w", err)
	}
	return Decode(data)
}

// Map returns the configuration as a key/value mapping accepted by FromMap
func (c Config) Map() map[string]any {
	return map[string]any{
		KeyName:      c.Name,
		KeyNumNodes:  c.NumNodes,
		KeyChordwise: c.NumChordwise,
		KeySpanwise:  c.NumSpanwise,
		KeySymmetry:  c.Symmetry,
		KeyWeighting: string(c.Weighting),
		KeyFEMOrigin: c.FEMOrigin,
		KeyE:         c.Material.E,
		KeyG:         c.Material.G,
		KeyYield:     c.Material.Yield,
		KeyMrho:      c.Material.Mrho,
	}
}

func inferWeighting(nodes, strips int) Weighting {
	switch {
	case strips == nodes:
		return Nearest
	case strips == nodes-1, strips == 0:
		return Linear
	}
	return ""
}

func requireInt(m map[string]any, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, &ConfigError{Field: key, Msg: "missing required key"}
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, &ConfigError{Field: key, Msg: fmt.Sprintf("expected an integer, got %g", n)}
		}
		return int(n), nil
	}
	return 0, &ConfigError{Field: key, Msg: fmt.Sprintf("expected an integer, got %T", v)}
}

func requireBool(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok {
		return false, &ConfigError{Field: key, Msg: "missing required key"}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ConfigError{Field: key, Msg: fmt.Sprintf("expected a boolean, got %T", v)}
	}
	return b, nil
}

func optionalFloat(m map[string]any, key string, dst *float64) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		*dst = n
	case int:
		*dst = float64(n)
	case int64:
		*dst = float64(n)
	default:
		return &ConfigError{Field: key, Msg: fmt.Sprintf("expected a number, got %T", v)}
	}
	if math.IsNaN(*dst) || math.IsInf(*dst, 0) {
		return &ConfigError{Field: key, Msg: "must be finite"}
	}
	return nil
}
