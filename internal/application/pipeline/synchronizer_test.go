package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryplan/aps-go/internal/application/pipeline"
	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

// unevenSpeeds makes PCK-02 half as fast as PCK-01.
func unevenSpeeds() []machine.Speed {
	return []machine.Speed{
		{MachineCode: "PCK-01", ArticleNr: machine.Wildcard, BoxesPerHour: 100, Efficiency: 1},
		{MachineCode: "PCK-02", ArticleNr: machine.Wildcard, BoxesPerHour: 50, Efficiency: 1},
		{MachineCode: machine.Wildcard, ArticleNr: machine.Wildcard, BoxesPerHour: 100, Efficiency: 1},
	}
}

func siblings(qtyA, qtyB int) (*scheduling.LogicalOrder, *scheduling.LogicalOrder) {
	a := newOrder("ART-100", qtyA, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	b := newOrder("ART-100", qtyB, "PCK-02", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	a.SyncGroupID = "group-1"
	b.SyncGroupID = "group-1"
	return a, b
}

func TestSync_AlignsSiblingsToCommonInterval(t *testing.T) {
	snap := newSnapshot(unevenSpeeds(), defaultShifts(), nil)
	cal := pipeline.NewCalendar(snap, 30)

	// PCK-01 needs 4h, PCK-02 needs 8h: the group stretches to the slower one
	a, b := siblings(400, 400)
	err := pipeline.NewSynchronizer(snap, cal).
		Sync(context.Background(), []*scheduling.LogicalOrder{a, b}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), a.TargetStart)
	assert.Equal(t, at(10, 6, 0), b.TargetStart)
	assert.Equal(t, at(10, 14, 0), a.TargetEnd)
	assert.Equal(t, at(10, 14, 0), b.TargetEnd)
}

func TestSync_GroupEndCoversSlowestShareAcrossDays(t *testing.T) {
	snap := newSnapshot(unevenSpeeds(), defaultShifts(), nil)
	cal := pipeline.NewCalendar(snap, 30)

	// PCK-02 needs 12h for 600 boxes: 8h on day 10 plus 4h on day 11
	a, b := siblings(600, 600)
	err := pipeline.NewSynchronizer(snap, cal).
		Sync(context.Background(), []*scheduling.LogicalOrder{a, b}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, a.TargetStart, b.TargetStart)
	assert.Equal(t, a.TargetEnd, b.TargetEnd)
	assert.Equal(t, at(11, 10, 0), b.TargetEnd)
}

func TestSync_SerializesGroupsOnSameFeeder(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	first := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	second := newOrder("ART-200", 200, "PCK-02", "FDR-01", at(10, 8, 0), at(10, 10, 0))

	err := pipeline.NewSynchronizer(snap, cal).
		Sync(context.Background(), []*scheduling.LogicalOrder{first, second}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), first.TargetStart)
	assert.Equal(t, at(10, 10, 0), first.TargetEnd)

	// Second group competes for the feeder and starts at the reservation end
	assert.Equal(t, at(10, 10, 0), second.TargetStart)
	assert.Equal(t, at(10, 12, 0), second.TargetEnd)
}

func TestSync_DifferentFeedersDoNotInteract(t *testing.T) {
	machines := []machine.Machine{
		{Code: "PCK-01", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "PCK-02", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "FDR-01", Kind: machine.KindFeeder, Status: machine.StatusActive},
		{Code: "FDR-02", Kind: machine.KindFeeder, Status: machine.StatusActive},
	}
	snap := machine.NewReferenceSnapshot(machines, nil, defaultSpeeds(), defaultShifts(), nil, at(1, 0, 0))
	cal := pipeline.NewCalendar(snap, 30)

	a := newOrder("ART-100", 400, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 10, 0))
	b := newOrder("ART-200", 400, "PCK-02", "FDR-02", at(10, 6, 0), at(10, 10, 0))

	err := pipeline.NewSynchronizer(snap, cal).
		Sync(context.Background(), []*scheduling.LogicalOrder{a, b}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), a.TargetStart)
	assert.Equal(t, at(10, 6, 0), b.TargetStart)
}

func TestSync_GroupDoesNotOverlapEarlierOrderOnSharedPacker(t *testing.T) {
	machines := []machine.Machine{
		{Code: "PCK-01", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "PCK-02", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "FDR-01", Kind: machine.KindFeeder, Status: machine.StatusActive},
		{Code: "FDR-02", Kind: machine.KindFeeder, Status: machine.StatusActive},
	}
	snap := machine.NewReferenceSnapshot(machines, nil, defaultSpeeds(), defaultShifts(), nil, at(1, 0, 0))
	cal := pipeline.NewCalendar(snap, 30)

	// PCK-02 already carries a serialized order on another feeder. The
	// sibling group must not be widened back over it.
	earlier := newOrder("ART-300", 400, "PCK-02", "FDR-02", at(10, 6, 0), at(10, 10, 0))
	a := newOrder("ART-100", 200, "PCK-01", "FDR-01", at(10, 6, 0), at(10, 8, 0))
	b := newOrder("ART-100", 200, "PCK-02", "FDR-01", at(10, 6, 0), at(10, 8, 0))
	a.SyncGroupID = "group-1"
	b.SyncGroupID = "group-1"

	err := pipeline.NewSynchronizer(snap, cal).
		Sync(context.Background(), []*scheduling.LogicalOrder{earlier, a, b}, scheduling.DefaultFlags())
	require.NoError(t, err)

	assert.Equal(t, at(10, 6, 0), earlier.TargetStart)
	assert.Equal(t, at(10, 10, 0), earlier.TargetEnd)

	// The group starts after the packer reservation ends and stretches to
	// cover each member's share
	assert.Equal(t, at(10, 10, 0), a.TargetStart)
	assert.Equal(t, at(10, 10, 0), b.TargetStart)
	assert.Equal(t, at(10, 12, 0), a.TargetEnd)
	assert.Equal(t, at(10, 12, 0), b.TargetEnd)
	assert.False(t, b.TargetStart.Before(earlier.TargetEnd))
}

func TestSync_DisabledLeavesOrdersUntouched(t *testing.T) {
	snap := newSnapshot(unevenSpeeds(), defaultShifts(), nil)
	cal := pipeline.NewCalendar(snap, 30)

	a, b := siblings(400, 400)
	flags := scheduling.DefaultFlags()
	flags.ParallelEnabled = false

	err := pipeline.NewSynchronizer(snap, cal).
		Sync(context.Background(), []*scheduling.LogicalOrder{a, b}, flags)
	require.NoError(t, err)

	assert.Equal(t, at(10, 10, 0), a.TargetEnd)
	assert.Equal(t, at(10, 10, 0), b.TargetEnd)
}

func TestSync_ObservesCancellation(t *testing.T) {
	snap := defaultSnapshot()
	cal := pipeline.NewCalendar(snap, 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, b := siblings(400, 400)
	err := pipeline.NewSynchronizer(snap, cal).
		Sync(ctx, []*scheduling.LogicalOrder{a, b}, scheduling.DefaultFlags())
	assert.ErrorIs(t, err, context.Canceled)
}
