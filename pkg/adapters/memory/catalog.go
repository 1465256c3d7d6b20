package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// Catalog implements ports.Catalog using an in-memory map keyed by machine name.
type Catalog struct {
	defs map[string]domain.Definition
	mu   sync.RWMutex
}

// NewCatalog creates a catalog from definitions. Every definition needs a name.
func NewCatalog(defs ...domain.Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]domain.Definition)}
	for _, def := range defs {
		if err := c.Add(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers or replaces a definition.
func (c *Catalog) Add(def domain.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("definition missing name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Name] = def
	return nil
}

// List returns the machine names, sorted.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// Get returns the definition called name.
func (c *Catalog) Get(ctx context.Context, name string) (domain.Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[name]
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %q", domain.ErrMachineNotFound, name)
	}
	return def, nil
}
