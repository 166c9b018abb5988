package catalog

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry serves the department/category/status reference data used by
// creation validation and the read-only catalog endpoint.
type Registry struct {
	catalog     Catalog
	departments map[string]Entry
	categories  map[string]Entry
	mu          sync.RWMutex
}

// NewRegistry loads the embedded catalog YAML.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	r := &Registry{
		catalog:     c,
		departments: make(map[string]Entry, len(c.Departments)),
		categories:  make(map[string]Entry, len(c.Categories)),
	}
	for _, d := range c.Departments {
		r.departments[d.ID] = d
	}
	for _, cat := range c.Categories {
		r.categories[cat.ID] = cat
	}

	return r, nil
}

// Catalog returns the full reference-data document.
func (r *Registry) Catalog() Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

// HasDepartment reports whether id is a known department code.
func (r *Registry) HasDepartment(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.departments[id]
	return ok
}

// HasCategory reports whether id is a known category code.
func (r *Registry) HasCategory(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.categories[id]
	return ok
}

// Department returns the entry for a department code.
func (r *Registry) Department(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.departments[id]
	return e, ok
}

// Category returns the entry for a category code.
func (r *Registry) Category(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.categories[id]
	return e, ok
}
