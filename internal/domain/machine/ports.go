package machine

import (
	"context"
	"time"
)

// ReferenceRepository is the read side of the reference data store. The
// snapshot loader pulls everything once per scheduling task; stages never
// touch the repository directly.
type ReferenceRepository interface {
	Machines(ctx context.Context) ([]Machine, error)
	Relations(ctx context.Context) ([]Relation, error)
	Speeds(ctx context.Context) ([]Speed, error)
	Shifts(ctx context.Context) ([]ShiftWindow, error)

	// MaintenanceBetween returns maintenance windows intersecting [from, to).
	MaintenanceBetween(ctx context.Context, from, to time.Time) ([]MaintenanceWindow, error)
}
