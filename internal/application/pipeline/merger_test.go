package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryplan/aps-go/internal/application/pipeline"
	"github.com/factoryplan/aps-go/internal/domain/plan"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

func TestMerge_CombinesCompatibleRows(t *testing.T) {
	rows := []plan.DecadeRow{
		newRow(1, "ART-100", 500, []string{"PCK-01"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 11, 0)),
		newRow(2, "ART-100", 300, []string{"PCK-01"}, []string{"FDR-01"}, at(12, 6, 0), at(12, 9, 0)),
	}

	orders, err := pipeline.NewMerger().Merge(rows, scheduling.DefaultFlags())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, 800, o.Qty)
	assert.Equal(t, at(10, 6, 0), o.TargetStart)
	assert.Equal(t, at(12, 9, 0), o.TargetEnd)
	assert.Equal(t, []int64{1, 2}, o.Provenance)
	assert.Equal(t, "ART-100", o.ArticleNr)
	assert.Equal(t, "FDR-01", o.Feeder)
}

func TestMerge_MachineSetComparisonIsOrderInsensitive(t *testing.T) {
	rows := []plan.DecadeRow{
		newRow(1, "ART-100", 400, []string{"PCK-01", "PCK-02"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 14, 0)),
		newRow(2, "ART-100", 600, []string{"PCK-02", "PCK-01"}, []string{"FDR-01"}, at(11, 6, 0), at(11, 14, 0)),
	}

	orders, err := pipeline.NewMerger().Merge(rows, scheduling.DefaultFlags())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1000, orders[0].Qty)
}

func TestMerge_KeepsIncompatibleRowsApart(t *testing.T) {
	rows := []plan.DecadeRow{
		newRow(1, "ART-100", 500, []string{"PCK-01"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 11, 0)),
		// Different article
		newRow(2, "ART-200", 300, []string{"PCK-01"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 9, 0)),
		// Different month
		{ID: 3, BatchID: "BATCH-1", ArticleNr: "ART-100", QtyFinal: 200,
			MakerCodes: []string{"PCK-01"}, FeederCodes: []string{"FDR-01"},
			PlannedStart: at(10, 6, 0).AddDate(0, 1, 0), PlannedEnd: at(10, 8, 0).AddDate(0, 1, 0),
			Row: 3, Validation: plan.ValidationValid},
		// Different packer set
		newRow(4, "ART-100", 100, []string{"PCK-02"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 7, 0)),
	}

	orders, err := pipeline.NewMerger().Merge(rows, scheduling.DefaultFlags())
	require.NoError(t, err)
	assert.Len(t, orders, 4)
}

func TestMerge_DisabledEmitsOneOrderPerRow(t *testing.T) {
	rows := []plan.DecadeRow{
		newRow(1, "ART-100", 500, []string{"PCK-01"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 11, 0)),
		newRow(2, "ART-100", 300, []string{"PCK-01"}, []string{"FDR-01"}, at(12, 6, 0), at(12, 9, 0)),
	}
	flags := scheduling.DefaultFlags()
	flags.MergeEnabled = false

	orders, err := pipeline.NewMerger().Merge(rows, flags)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 500, orders[0].Qty)
	assert.Equal(t, 300, orders[1].Qty)
	assert.Equal(t, []int64{1}, orders[0].Provenance)
	assert.Equal(t, []int64{2}, orders[1].Provenance)
}

func TestMerge_RejectsMultiToMultiRows(t *testing.T) {
	rows := []plan.DecadeRow{
		newRow(1, "ART-100", 500, []string{"PCK-01"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 11, 0)),
		newRow(2, "ART-100", 300, []string{"PCK-01", "PCK-02"}, []string{"FDR-01", "FDR-02"}, at(10, 6, 0), at(10, 9, 0)),
	}

	for _, flags := range []scheduling.Flags{scheduling.DefaultFlags(), {}} {
		_, err := pipeline.NewMerger().Merge(rows, flags)
		var topo *scheduling.InvalidTopologyError
		require.True(t, errors.As(err, &topo))
		assert.Equal(t, []int64{2}, topo.Rows)
		assert.Equal(t, scheduling.KindInvalidTopology, scheduling.KindOf(err))
	}
}

func TestMerge_PreservesTotalQuantity(t *testing.T) {
	rows := []plan.DecadeRow{
		newRow(1, "ART-100", 137, []string{"PCK-01"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 8, 0)),
		newRow(2, "ART-100", 263, []string{"PCK-01"}, []string{"FDR-01"}, at(11, 6, 0), at(11, 8, 0)),
		newRow(3, "ART-200", 411, []string{"PCK-02"}, []string{"FDR-01"}, at(10, 6, 0), at(10, 10, 0)),
	}

	orders, err := pipeline.NewMerger().Merge(rows, scheduling.DefaultFlags())
	require.NoError(t, err)

	var total int
	for _, o := range orders {
		total += o.Qty
	}
	assert.Equal(t, 137+263+411, total)
}
