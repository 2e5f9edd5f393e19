package plan

import "context"

// Repository handles persistence of decade-plan rows grouped by import batch.
type Repository interface {
	// SaveRows persists the rows of one import batch.
	SaveRows(ctx context.Context, rows []DecadeRow) error

	// LoadBatch returns the schedulable rows (VALID or WARNING) of a batch
	// in (plannedStart asc, row asc) order. This is the canonical input
	// order of the scheduling pipeline.
	LoadBatch(ctx context.Context, batchID string) ([]DecadeRow, error)

	// DeleteBatch removes all rows of a batch.
	DeleteBatch(ctx context.Context, batchID string) error
}
