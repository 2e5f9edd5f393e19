package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryplan/aps-go/internal/application/pipeline"
	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

func TestCorrect_ComputesDurationFromSpeed(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	// 1200 boxes at 100/h = 12h: 8h on day 10, 4h on day 11
	o := newOrder("ART-100", 1200, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 18, 0))
	err := pipeline.NewCorrector(snap, cal, 0).
		Correct(context.Background(), []*scheduling.LogicalOrder{o}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), o.TargetStart)
	assert.Equal(t, at(11, 10, 0), o.TargetEnd)
}

func TestCorrect_MovesStartIntoShift(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	o := newOrder("ART-100", 200, "PCK-01", "FDR-01", at(10, 3, 0), at(10, 5, 0))
	err := pipeline.NewCorrector(snap, cal, 0).
		Correct(context.Background(), []*scheduling.LogicalOrder{o}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), o.TargetStart)
	assert.Equal(t, at(10, 8, 0), o.TargetEnd)
}

func TestCorrect_SerializesOrdersOnSamePacker(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	first := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	second := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))

	err := pipeline.NewCorrector(snap, cal, 15*time.Minute).
		Correct(context.Background(), []*scheduling.LogicalOrder{first, second}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), first.TargetStart)
	assert.Equal(t, at(10, 10, 0), first.TargetEnd)

	// Second starts after first end + 15m gap; 3.75h fit before shift end,
	// the remaining 15m roll into the next day
	assert.Equal(t, at(10, 10, 15), second.TargetStart)
	assert.Equal(t, at(11, 6, 15), second.TargetEnd)
}

func TestCorrect_IndependentPackersKeepTheirAnchors(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	a := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	b := newOrder("ART-100", 400, "PCK-02", "FDR-01", at(10, 6, 0), at(10, 10, 0))

	err := pipeline.NewCorrector(snap, cal, 15*time.Minute).
		Correct(context.Background(), []*scheduling.LogicalOrder{a, b}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), a.TargetStart)
	assert.Equal(t, at(10, 6, 0), b.TargetStart)
}

func TestCorrect_PushesPastFeederMaintenance(t *testing.T) {
	snap := newSnapshot(defaultSpeeds(), defaultShifts(), []machine.MaintenanceWindow{
		{MachineCode: "FDR-01", Start: at(10, 8, 0), End: at(10, 10, 0), Status: machine.MaintenanceConfirmed},
	})
	cal := pipeline.NewCalendar(snap, 30)

	// Would run 06:00-10:00 and overlap the feeder window, so it restarts
	// at the feeder's next working instant
	o := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	err := pipeline.NewCorrector(snap, cal, 0).
		Correct(context.Background(), []*scheduling.LogicalOrder{o}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 10, 0), o.TargetStart)
	assert.Equal(t, at(10, 14, 0), o.TargetEnd)
}

func TestCorrect_IgnoresCancelledFeederMaintenance(t *testing.T) {
	snap := newSnapshot(defaultSpeeds(), defaultShifts(), []machine.MaintenanceWindow{
		{MachineCode: "FDR-01", Start: at(10, 8, 0), End: at(10, 10, 0), Status: machine.MaintenanceCancelled},
	})
	cal := pipeline.NewCalendar(snap, 30)

	o := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	err := pipeline.NewCorrector(snap, cal, 0).
		Correct(context.Background(), []*scheduling.LogicalOrder{o}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), o.TargetStart)
	assert.Equal(t, at(10, 10, 0), o.TargetEnd)
}

func TestCorrect_DisabledLeavesPlannedTimes(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	o := newOrder("ART-100", 1200, "PCK-01", "FDR-01", at(10, 3, 0), at(10, 5, 0))
	flags := scheduling.DefaultFlags()
	flags.CorrectionEnabled = false

	err := pipeline.NewCorrector(snap, cal, 0).
		Correct(context.Background(), []*scheduling.LogicalOrder{o}, flags)
	require.NoError(t, err)

	assert.Equal(t, at(10, 3, 0), o.TargetStart)
	assert.Equal(t, at(10, 5, 0), o.TargetEnd)
}

func TestCorrect_ObservesCancellation(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	err := pipeline.NewCorrector(snap, cal, 0).
		Correct(ctx, []*scheduling.LogicalOrder{o}, scheduling.DefaultFlags())
	assert.ErrorIs(t, err, context.Canceled)
}
