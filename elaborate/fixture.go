package elaborate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/ir"
)

// yamlRegistry is the on-disk shape of a module registry fixture: a flat
// list of module stand-ins, each with a name, port list, and an optional
// instance naming the child it should pre-wire, so a single file can
// describe a small hierarchy for elaboration tests without any Go source.
type yamlRegistry struct {
	Modules []yamlModule `yaml:"modules"`
}

type yamlModule struct {
	Name      string         `yaml:"name"`
	Ports     []yamlPort     `yaml:"ports,omitempty"`
	Instances []yamlInstance `yaml:"instances,omitempty"`
	BlackBox  bool           `yaml:"black_box,omitempty"`
}

type yamlPort struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"` // "in", "out", or "inout"
}

type yamlInstance struct {
	Name      string           `yaml:"name"`
	Module    string           `yaml:"module"`
	Overrides map[string]int64 `yaml:"overrides,omitempty"`
}

// LoadRegistryFromYAML reads a module registry fixture from path and
// converts it into a populated Registry, the fixture-loading counterpart
// to Register for tests that would rather describe a hierarchy in YAML
// than build it with Go calls.
func LoadRegistryFromYAML(path string, interner *common.Interner) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elaborate: reading registry fixture: %w", err)
	}

	var root yamlRegistry
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("elaborate: parsing registry fixture %s: %w", path, err)
	}

	registry := NewRegistry()
	for _, ym := range root.Modules {
		m := ir.NewModule(ym.Name, common.NoSpan)
		m.IsBlackBox = ym.BlackBox

		for _, yp := range ym.Ports {
			dir, err := parsePortDirection(yp.Dir)
			if err != nil {
				return nil, fmt.Errorf("elaborate: module %q port %q: %w", ym.Name, yp.Name, err)
			}
			id := m.Signals.Add(ir.Signal{Name: yp.Name, Kind: ir.SignalPort, Dir: dir})
			m.Ports = append(m.Ports, id)
		}

		for _, yi := range ym.Instances {
			overrides := overridesFromYAML(interner, yi.Overrides)
			m.Cells.Add(ir.Cell{
				Name:               yi.Name,
				Kind:               ir.CellInstance,
				InstanceModuleName: yi.Module,
				InstanceOverrides:  overrides,
			})
		}

		registry.Register(m)
	}
	return registry, nil
}

// overridesFromYAML converts a plain string-keyed map (the only shape YAML
// can express without a custom Ident type) into a ConstEnv keyed by
// interned identifiers, integer-valued like the generic/parameter
// overrides consteval folds from source.
func overridesFromYAML(interner *common.Interner, raw map[string]int64) ir.ConstEnv {
	if len(raw) == 0 {
		return nil
	}
	env := make(ir.ConstEnv, len(raw))
	for name, n := range raw {
		env[interner.GetOrIntern(name)] = ir.Int64(n)
	}
	return env
}

func parsePortDirection(s string) (ir.PortDirection, error) {
	switch s {
	case "in":
		return ir.PortInput, nil
	case "out":
		return ir.PortOutput, nil
	case "inout":
		return ir.PortInout, nil
	case "":
		return ir.PortNone, nil
	default:
		return ir.PortNone, fmt.Errorf("unknown port direction %q", s)
	}
}

// yamlOverrideSet is the on-disk shape of a standalone parameter-override
// fixture: named override sets a test can hand to Builder.Build directly,
// independent of any registry fixture.
type yamlOverrideSet struct {
	Overrides map[string]map[string]int64 `yaml:"overrides"`
}

// LoadOverridesFromYAML reads a named set of parameter-override fixtures
// from path, returning a ConstEnv per name (e.g. one per test case) keyed
// through interner so callers can pass the result straight to
// Builder.Build.
func LoadOverridesFromYAML(path string, interner *common.Interner) (map[string]ir.ConstEnv, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elaborate: reading overrides fixture: %w", err)
	}

	var root yamlOverrideSet
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("elaborate: parsing overrides fixture %s: %w", path, err)
	}

	out := make(map[string]ir.ConstEnv, len(root.Overrides))
	for name, raw := range root.Overrides {
		out[name] = overridesFromYAML(interner, raw)
	}
	return out, nil
}
