package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load returns the validated catalog: the YAML file at path when path is
// non-empty, the built-in default otherwise. A validation failure is fatal
// to startup, so no malformed catalog is ever evaluated against.
func Load(path string) (*Catalog, error) {
	if path == "" {
		cat := Default()
		if err := cat.Validate(); err != nil {
			return nil, err
		}
		return cat, nil
	}
	return LoadFile(path)
}

// LoadFile parses and validates a YAML rule catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}
