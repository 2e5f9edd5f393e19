package machine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryplan/aps-go/internal/domain/machine"
)

func testTime(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}

func buildSnapshot(speeds []machine.Speed, shifts []machine.ShiftWindow, maintenance []machine.MaintenanceWindow) *machine.ReferenceSnapshot {
	machines := []machine.Machine{
		{Code: "PCK-01", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "PCK-02", Kind: machine.KindPacker, Status: machine.StatusActive},
		{Code: "FDR-01", Kind: machine.KindFeeder, Status: machine.StatusActive},
	}
	relations := []machine.Relation{
		{FeederCode: "FDR-01", MakerCode: "PCK-01", Priority: 1},
		{FeederCode: "FDR-01", MakerCode: "PCK-02", Priority: 2},
	}
	return machine.NewReferenceSnapshot(machines, relations, speeds, shifts, maintenance, testTime(0))
}

func TestResolveSpeed_PrefersMostSpecificEntry(t *testing.T) {
	snap := buildSnapshot([]machine.Speed{
		{MachineCode: machine.Wildcard, ArticleNr: machine.Wildcard, BoxesPerHour: 50, Efficiency: 1},
		{MachineCode: machine.Wildcard, ArticleNr: "ART-100", BoxesPerHour: 60, Efficiency: 1},
		{MachineCode: "PCK-01", ArticleNr: machine.Wildcard, BoxesPerHour: 70, Efficiency: 1},
		{MachineCode: "PCK-01", ArticleNr: "ART-100", BoxesPerHour: 80, Efficiency: 1},
	}, nil, nil)

	rate, err := snap.ResolveSpeed("PCK-01", "ART-100", testTime(8))
	require.NoError(t, err)
	assert.InDelta(t, 80.0, rate, 1e-9)

	// No exact entry for this article: machine wildcard wins over article match
	rate, err = snap.ResolveSpeed("PCK-01", "ART-200", testTime(8))
	require.NoError(t, err)
	assert.InDelta(t, 70.0, rate, 1e-9)

	// Other machine: article-specific wildcard entry
	rate, err = snap.ResolveSpeed("PCK-02", "ART-100", testTime(8))
	require.NoError(t, err)
	assert.InDelta(t, 60.0, rate, 1e-9)

	// Full wildcard fallback
	rate, err = snap.ResolveSpeed("PCK-02", "ART-999", testTime(8))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rate, 1e-9)
}

func TestResolveSpeed_AppliesEfficiency(t *testing.T) {
	snap := buildSnapshot([]machine.Speed{
		{MachineCode: "PCK-01", ArticleNr: "ART-100", BoxesPerHour: 100, Efficiency: 0.8},
	}, nil, nil)

	rate, err := snap.ResolveSpeed("PCK-01", "ART-100", testTime(8))
	require.NoError(t, err)
	assert.InDelta(t, 80.0, rate, 1e-9)
}

func TestResolveSpeed_UnknownMachine(t *testing.T) {
	snap := buildSnapshot(nil, nil, nil)

	_, err := snap.ResolveSpeed("NOPE", "ART-100", testTime(8))
	var unknownMachine *machine.UnknownMachineError
	require.True(t, errors.As(err, &unknownMachine))
	assert.Equal(t, "NOPE", unknownMachine.Code)
}

func TestResolveSpeed_UnknownArticle(t *testing.T) {
	snap := buildSnapshot([]machine.Speed{
		{MachineCode: "PCK-02", ArticleNr: "ART-100", BoxesPerHour: 50, Efficiency: 1},
	}, nil, nil)

	_, err := snap.ResolveSpeed("PCK-01", "ART-100", testTime(8))
	var unknownArticle *machine.UnknownArticleError
	require.True(t, errors.As(err, &unknownArticle))
	assert.Equal(t, "PCK-01", unknownArticle.MachineCode)
	assert.Equal(t, "ART-100", unknownArticle.ArticleNr)
}

func TestShiftsFor_SpecificOverridesWildcard(t *testing.T) {
	snap := buildSnapshot(nil, []machine.ShiftWindow{
		{ShiftName: "day", MachineScope: machine.Wildcard, StartOfDay: 6 * time.Hour, EndOfDay: 14 * time.Hour},
		{ShiftName: "late", MachineScope: machine.Wildcard, StartOfDay: 14 * time.Hour, EndOfDay: 22 * time.Hour},
		{ShiftName: "short", MachineScope: "PCK-02", StartOfDay: 8 * time.Hour, EndOfDay: 12 * time.Hour},
	}, nil)

	day := testTime(0)

	wildcardShifts := snap.ShiftsFor("PCK-01", day)
	require.Len(t, wildcardShifts, 2)
	assert.Equal(t, "day", wildcardShifts[0].ShiftName)
	assert.Equal(t, "late", wildcardShifts[1].ShiftName)

	overridden := snap.ShiftsFor("PCK-02", day)
	require.Len(t, overridden, 1)
	assert.Equal(t, "short", overridden[0].ShiftName)
}

func TestShiftsFor_HonorsEffectiveRange(t *testing.T) {
	from := testTime(0).AddDate(0, 0, 1)
	snap := buildSnapshot(nil, []machine.ShiftWindow{
		{ShiftName: "future", MachineScope: machine.Wildcard, StartOfDay: 6 * time.Hour, EndOfDay: 14 * time.Hour, EffectiveFrom: &from},
	}, nil)

	assert.Empty(t, snap.ShiftsFor("PCK-01", testTime(0)))
	assert.Len(t, snap.ShiftsFor("PCK-01", from), 1)
}

func TestMaintenanceFor_KeepsOnlyBlockingWindows(t *testing.T) {
	snap := buildSnapshot(nil, nil, []machine.MaintenanceWindow{
		{MachineCode: "PCK-01", Start: testTime(8), End: testTime(10), Status: machine.MaintenancePlanned},
		{MachineCode: "PCK-01", Start: testTime(12), End: testTime(13), Status: machine.MaintenanceCancelled},
		{MachineCode: "PCK-01", Start: testTime(6), End: testTime(7), Status: machine.MaintenanceCompleted},
		{MachineCode: "PCK-01", Start: testTime(14), End: testTime(15), Status: machine.MaintenanceConfirmed},
	})

	windows := snap.MaintenanceFor("PCK-01")
	require.Len(t, windows, 2)
	// Sorted by start
	assert.Equal(t, testTime(8), windows[0].Start)
	assert.Equal(t, testTime(14), windows[1].Start)
}

func TestRelationsForFeeder_OrderedByPriority(t *testing.T) {
	snap := buildSnapshot(nil, nil, nil)

	rels := snap.RelationsForFeeder("FDR-01", testTime(8))
	require.Len(t, rels, 2)
	assert.Equal(t, "PCK-01", rels[0].MakerCode)
	assert.Equal(t, "PCK-02", rels[1].MakerCode)

	back := snap.FeedersForPacker("PCK-01", testTime(8))
	require.Len(t, back, 1)
	assert.Equal(t, "FDR-01", back[0].FeederCode)
}
