// Package balancedef loads named balance definitions from YAML.
package balancedef

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iho/zionledger/internal/domain"
)

//go:embed defaults.yml
var defaultDefinitions []byte

type fileConfig struct {
	Balances map[string]definitionConfig `yaml:"balances"`
}

type definitionConfig struct {
	TimeAxis        string          `yaml:"time_axis"`
	Description     string          `yaml:"description"`
	Currency        string          `yaml:"currency"`
	AddressPatterns []patternConfig `yaml:"address_patterns"`
}

type patternConfig struct {
	Namespace     string   `yaml:"namespace"`
	Names         []string `yaml:"names"`
	AccountScoped *bool    `yaml:"account_scoped"`
}

// UnmarshalYAML accepts either a mapping or a "namespace:name" string.
func (p *patternConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		namespace, name, ok := strings.Cut(value.Value, ":")
		if !ok || namespace == "" || name == "" {
			return fmt.Errorf("%w: address pattern %q is not namespace:name", domain.ErrInvalidBalanceDefinition, value.Value)
		}

		p.Namespace = namespace
		p.Names = []string{name}

		return nil
	}

	type plain patternConfig

	return value.Decode((*plain)(p))
}

// Registry holds immutable balance definitions keyed by name.
type Registry struct {
	definitions map[string]*domain.BalanceDefinition
	names       []string
}

// Load reads definitions from path, or the embedded defaults when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return LoadFromBytes(defaultDefinitions)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read balance definitions: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates definitions.
func LoadFromBytes(data []byte) (*Registry, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse balance definitions: %w", err)
	}

	if len(cfg.Balances) == 0 {
		return nil, fmt.Errorf("%w: no balances defined", domain.ErrInvalidBalanceDefinition)
	}

	r := &Registry{
		definitions: make(map[string]*domain.BalanceDefinition, len(cfg.Balances)),
		names:       make([]string, 0, len(cfg.Balances)),
	}

	for name, dc := range cfg.Balances {
		def := &domain.BalanceDefinition{
			Name:        name,
			TimeAxis:    domain.TimeAxis(dc.TimeAxis),
			Description: dc.Description,
			Currency:    dc.Currency,
		}

		for _, pc := range dc.AddressPatterns {
			scoped := true
			if pc.AccountScoped != nil {
				scoped = *pc.AccountScoped
			}

			def.AddressPatterns = append(def.AddressPatterns, domain.AddressPattern{
				Namespace:     pc.Namespace,
				Names:         pc.Names,
				AccountScoped: scoped,
			})
		}

		if err := def.Validate(); err != nil {
			return nil, err
		}

		if def.Currency != "" {
			if err := domain.ValidateCurrency(def.Currency); err != nil {
				return nil, fmt.Errorf("%w: balance %q: %v", domain.ErrInvalidBalanceDefinition, name, err)
			}
		}

		r.definitions[name] = def
		r.names = append(r.names, name)
	}

	sort.Strings(r.names)

	return r, nil
}

// Definition returns the named definition.
func (r *Registry) Definition(name string) (*domain.BalanceDefinition, error) {
	def, ok := r.definitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrBalanceDefinitionNotFound, name)
	}

	return def, nil
}

// Names returns the defined balance names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}
