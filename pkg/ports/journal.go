package ports

import (
	"context"

	"github.com/aretw0/machine/pkg/domain"
)

// Journal defines the interface for persisting settled executions.
// The engine writes one Record per execution when a Journal is configured.
type Journal interface {
	// Record persists the outcome of an execution, keyed by its ID.
	Record(ctx context.Context, rec domain.Record) error

	// Get retrieves a record by execution ID.
	// Returns domain.ErrRecordNotFound if the execution is unknown.
	Get(ctx context.Context, id string) (domain.Record, error)

	// List returns the IDs of the recorded executions, oldest first.
	List(ctx context.Context) ([]string, error)

	// Delete removes a record.
	Delete(ctx context.Context, id string) error
}
