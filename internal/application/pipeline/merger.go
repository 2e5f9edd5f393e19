package pipeline

import (
	"sort"
	"strings"

	"github.com/factoryplan/aps-go/internal/domain/plan"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/pkg/utils"
)

// Merger collapses decade rows that share (month, article, packer-set,
// feeder-set) into a single logical order.
type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Merge turns rows into logical orders. With merging disabled every row
// becomes one order. Rows relating multiple packers to multiple feeders are
// rejected with INVALID_TOPOLOGY either way.
func (m *Merger) Merge(rows []plan.DecadeRow, flags scheduling.Flags) ([]*scheduling.LogicalOrder, error) {
	if bad := multiToMultiRows(rows); len(bad) > 0 {
		return nil, scheduling.NewInvalidTopologyError(bad)
	}

	if !flags.MergeEnabled {
		orders := make([]*scheduling.LogicalOrder, 0, len(rows))
		for i := range rows {
			orders = append(orders, orderFromRow(&rows[i]))
		}
		return orders, nil
	}

	// Group in input order so output order follows the canonical row order.
	groups := make(map[string]*scheduling.LogicalOrder)
	var keys []string
	for i := range rows {
		row := &rows[i]
		key := mergeKey(row)
		existing, ok := groups[key]
		if !ok {
			groups[key] = orderFromRow(row)
			keys = append(keys, key)
			continue
		}
		existing.Qty += row.QtyFinal
		existing.TargetStart = utils.MinTime(existing.TargetStart, row.PlannedStart)
		existing.TargetEnd = utils.MaxTime(existing.TargetEnd, row.PlannedEnd)
		existing.Provenance = append(existing.Provenance, row.ID)
	}

	orders := make([]*scheduling.LogicalOrder, 0, len(keys))
	for _, key := range keys {
		orders = append(orders, groups[key])
	}
	return orders, nil
}

func multiToMultiRows(rows []plan.DecadeRow) []int64 {
	var bad []int64
	for i := range rows {
		if len(rows[i].MakerCodes) > 1 && len(rows[i].FeederCodes) > 1 {
			bad = append(bad, rows[i].ID)
		}
	}
	return bad
}

func orderFromRow(row *plan.DecadeRow) *scheduling.LogicalOrder {
	o := scheduling.NewLogicalOrder(
		row.ArticleNr,
		row.QtyFinal,
		append([]string(nil), row.MakerCodes...),
		row.FeederCodes[0],
		row.PlannedStart,
		row.PlannedEnd,
	)
	o.Provenance = []int64{row.ID}
	return o
}

// mergeKey is (year-month of plannedStart, article, canonical packers,
// canonical feeders). canonical(set) sorts lexicographically and joins.
func mergeKey(row *plan.DecadeRow) string {
	return strings.Join([]string{
		row.PlannedStart.Format("2006-01"),
		row.ArticleNr,
		canonical(row.MakerCodes),
		canonical(row.FeederCodes),
	}, "|")
}

func canonical(codes []string) string {
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
