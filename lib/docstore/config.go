package docstore

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/jsonbq/jsonbq/lib/jsonbq"
)

// Collection describes one document-bearing table.
type Collection struct {
	Name       string `yaml:"name"`
	Table      string `yaml:"table"`
	DataColumn string `yaml:"data_column"`
}

// DataRef is the table-qualified reference to the collection's document
// column, in the form the predicate builder expects.
func (c Collection) DataRef() jsonbq.ColumnRef {
	return jsonbq.ColumnRef{Table: c.Table, Column: c.DataColumn}
}

// Registry is the set of collections a store serves.
type Registry struct {
	Collections []Collection `yaml:"collections"`
}

func (r *Registry) validateAndSetDefaults() error {
	if len(r.Collections) == 0 {
		return errors.New("no collections configured")
	}

	seen := map[string]bool{}
	for i := range r.Collections {
		c := &r.Collections[i]

		if c.Name == "" {
			return fmt.Errorf("collection at index %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate collection %q", c.Name)
		}
		seen[c.Name] = true

		if c.Table == "" {
			c.Table = c.Name
		}
		if c.DataColumn == "" {
			c.DataColumn = "data"
		}
	}

	return nil
}

func (r Registry) lookup(name string) (Collection, bool) {
	for _, c := range r.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// LoadRegistry reads a registry from a YAML file, or from literal YAML
// when the argument starts with "collections:".
func LoadRegistry(filenameOrData string) (*Registry, error) {
	data := []byte(filenameOrData)

	if !strings.HasPrefix(filenameOrData, "collections:") {
		content, err := os.ReadFile(filenameOrData)
		if err != nil {
			return nil, err
		}
		data = content
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("error unmarshaling registry: %w", err)
	}

	if err := registry.validateAndSetDefaults(); err != nil {
		return nil, err
	}

	return &registry, nil
}
