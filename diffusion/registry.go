package diffusion

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AdapterSpec describes one known style adapter: its hub ID and the
// trigger word prompts must carry for the style to activate.
type AdapterSpec struct {
	ID          string `yaml:"id"`
	TriggerWord string `yaml:"trigger_word"`
	Description string `yaml:"description,omitempty"`
}

// AdapterRegistry is an optional catalog of known style adapters, loaded
// from a YAML file. It resolves trigger words for adapters the operator
// did not configure explicitly.
type AdapterRegistry struct {
	specs []AdapterSpec
}

// registryFile is the on-disk YAML layout.
type registryFile struct {
	Adapters []AdapterSpec `yaml:"adapters"`
}

// LoadAdapterRegistry reads the registry from a YAML file.
func LoadAdapterRegistry(path string) (*AdapterRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read adapter registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse adapter registry: %w", err)
	}

	for i, spec := range file.Adapters {
		if spec.ID == "" {
			return nil, fmt.Errorf("adapter registry entry %d has no id", i)
		}
	}

	return &AdapterRegistry{specs: file.Adapters}, nil
}

// Lookup finds a spec by adapter ID.
func (r *AdapterRegistry) Lookup(id string) (*AdapterSpec, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.specs {
		if r.specs[i].ID == id {
			return &r.specs[i], true
		}
	}
	return nil, false
}

// TriggerWordFor returns the registry's trigger word for the adapter, or
// the fallback when the adapter is unknown or carries none.
func (r *AdapterRegistry) TriggerWordFor(id, fallback string) string {
	if spec, ok := r.Lookup(id); ok && spec.TriggerWord != "" {
		return spec.TriggerWord
	}
	return fallback
}

// Len returns the number of registered adapters.
func (r *AdapterRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.specs)
}
