package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/turing/pkg/domain"
)

// Catalog implements ports.Catalog over a directory of definition files.
// Each file is a machine named after its base name.
type Catalog struct {
	dir string
}

// NewCatalog creates a catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// List returns the machine names found in the directory, sorted.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog %s: %w", c.dir, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := FormatFromPath(entry.Name()); err != nil {
			continue
		}
		name := trimExtension(entry.Name())
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Get loads the machine called name. Returns domain.ErrMachineNotFound when
// no file with a recognized extension exists.
func (c *Catalog) Get(ctx context.Context, name string) (domain.Definition, error) {
	if name == "" || filepath.Base(name) != name {
		return domain.Definition{}, fmt.Errorf("%w: %q", domain.ErrMachineNotFound, name)
	}

	for _, ext := range Extensions {
		path := filepath.Join(c.dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return domain.Definition{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		def, err := Load(path)
		if err != nil {
			return domain.Definition{}, err
		}
		def.Name = name
		return def, nil
	}
	return domain.Definition{}, fmt.Errorf("%w: %q", domain.ErrMachineNotFound, name)
}
