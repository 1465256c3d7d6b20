package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// RunStore defines the interface for persisting finished runs.
type RunStore interface {
	// Save persists the record under record.ID.
	Save(ctx context.Context, record *domain.Record) error

	// Load retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (*domain.Record, error)

	// Delete removes a run. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of the stored runs, oldest CreatedAt first.
	List(ctx context.Context) ([]string, error)
}

// Catalog defines the interface for named machine definitions.
type Catalog interface {
	// List returns the available machine names, sorted.
	List(ctx context.Context) ([]string, error)

	// Get returns the definition called name.
	// Returns an error wrapping domain.ErrMachineNotFound if it does not exist.
	Get(ctx context.Context, name string) (domain.Definition, error)
}
