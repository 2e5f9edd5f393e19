package workorder

import (
	"context"
	"time"
)

// Repository persists the generated work orders. A scheduling task owns the
// orders written under its taskId; DeleteByTaskID is the rollback primitive.
type Repository interface {
	SavePackerOrders(ctx context.Context, orders []PackerOrder) error
	SaveFeederOrders(ctx context.Context, orders []FeederOrder) error

	FindPackerOrdersByTaskID(ctx context.Context, taskID string) ([]PackerOrder, error)
	FindFeederOrdersByTaskID(ctx context.Context, taskID string) ([]FeederOrder, error)

	// DeleteByTaskID removes all packer and feeder orders of a task.
	DeleteByTaskID(ctx context.Context, taskID string) error

	// UpdatePackerOrderStatus moves an order to a new lifecycle status.
	UpdatePackerOrderStatus(ctx context.Context, planID string, status Status) error
}

// SequenceAllocator hands out per-(kind, date) monotonic sequence numbers.
// Allocating n numbers advances the counter by exactly n atomically; numbers
// are never returned to the pool.
type SequenceAllocator interface {
	// Allocate reserves n consecutive values and returns the first one.
	// The first value ever allocated for a (kind, date) pair is 1.
	Allocate(ctx context.Context, kind Kind, date time.Time, n int) (int64, error)
}
