package pipeline_test

import (
	"time"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/plan"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

// Fixture factory: two packers fed by one feeder, a wildcard speed of
// 100 boxes/h, one 06:00-14:00 shift on every machine.

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func defaultSpeeds() []machine.Speed {
	return []machine.Speed{
		{MachineCode: machine.Wildcard, ArticleNr: machine.Wildcard, BoxesPerHour: 100, Efficiency: 1},
	}
}

func defaultShifts() []machine.ShiftWindow {
	return []machine.ShiftWindow{
		{ShiftName: "day", MachineScope: machine.Wildcard, StartOfDay: 6 * time.Hour, EndOfDay: 14 * time.Hour},
	}
}

func newSnapshot(speeds []machine.Speed, shifts []machine.ShiftWindow, maintenance []machine.MaintenanceWindow) *machine.ReferenceSnapshot {
	machines := []machine.Machine{
		{Code: "PCK-01", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "PCK-02", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "FDR-01", Kind: machine.KindFeeder, Status: machine.StatusActive},
	}
	relations := []machine.Relation{
		{FeederCode: "FDR-01", MakerCode: "PCK-01", Priority: 1},
		{FeederCode: "FDR-01", MakerCode: "PCK-02", Priority: 2},
	}
	return machine.NewReferenceSnapshot(machines, relations, speeds, shifts, maintenance, at(1, 0, 0))
}

func defaultSnapshot() *machine.ReferenceSnapshot {
	return newSnapshot(defaultSpeeds(), defaultShifts(), nil)
}

func newRow(id int64, article string, qty int, makers, feeders []string, start, end time.Time) plan.DecadeRow {
	return plan.DecadeRow{
		ID:           id,
		BatchID:      "BATCH-1",
		ArticleNr:    article,
		QtyTotal:     qty,
		QtyFinal:     qty,
		FeederCodes:  feeders,
		MakerCodes:   makers,
		PlannedStart: start,
		PlannedEnd:   end,
		Row:          int(id),
		Validation:   plan.ValidationValid,
	}
}

func newOrder(article string, qty int, packer, feeder string, start, end time.Time) *scheduling.LogicalOrder {
	return scheduling.NewLogicalOrder(article, qty, []string{packer}, feeder, start, end)
}
