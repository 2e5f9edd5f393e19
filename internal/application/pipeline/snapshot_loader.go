package pipeline

import (
	"context"
	"time"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/shared"
)

// SnapshotLoader builds the per-task reference snapshot. Every stage of a
// task reads from the same snapshot; the reference store is never consulted
// again while the task runs.
type SnapshotLoader struct {
	refRepo     machine.ReferenceRepository
	clock       shared.Clock
	horizonDays int
}

func NewSnapshotLoader(refRepo machine.ReferenceRepository, clock shared.Clock, horizonDays int) *SnapshotLoader {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &SnapshotLoader{refRepo: refRepo, clock: clock, horizonDays: horizonDays}
}

// Load pulls machines, relations, speeds, shifts, and the maintenance
// windows inside the scheduling horizon into one consistent snapshot.
func (l *SnapshotLoader) Load(ctx context.Context) (*machine.ReferenceSnapshot, error) {
	now := l.clock.Now()

	machines, err := l.refRepo.Machines(ctx)
	if err != nil {
		return nil, err
	}
	relations, err := l.refRepo.Relations(ctx)
	if err != nil {
		return nil, err
	}
	speeds, err := l.refRepo.Speeds(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := l.refRepo.Shifts(ctx)
	if err != nil {
		return nil, err
	}

	horizon := time.Duration(l.horizonDays) * 24 * time.Hour
	maintenance, err := l.refRepo.MaintenanceBetween(ctx, now.Add(-horizon), now.Add(horizon))
	if err != nil {
		return nil, err
	}

	return machine.NewReferenceSnapshot(machines, relations, speeds, shifts, maintenance, now), nil
}
