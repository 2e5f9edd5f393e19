package pipeline

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/internal/domain/shared"
	"github.com/factoryplan/aps-go/internal/domain/workorder"
	"github.com/factoryplan/aps-go/pkg/utils"
)

// DefaultWriterRetries is how often the writer retries a failed allocation
// or write before giving up with PERSISTENCE_FAILED.
const DefaultWriterRetries = 3

// Writer turns final logical orders into persisted HJB packer orders and HWS
// feeder orders with per-day monotonic sequence numbers.
type Writer struct {
	snap       *machine.ReferenceSnapshot
	repo       workorder.Repository
	seq        workorder.SequenceAllocator
	clock      shared.Clock
	maxRetries int
}

func NewWriter(
	snap *machine.ReferenceSnapshot,
	repo workorder.Repository,
	seq workorder.SequenceAllocator,
	clock shared.Clock,
	maxRetries int,
) *Writer {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if maxRetries <= 0 {
		maxRetries = DefaultWriterRetries
	}
	return &Writer{snap: snap, repo: repo, seq: seq, clock: clock, maxRetries: maxRetries}
}

// Write emits one HWS order per sibling group covering the union of the
// sibling intervals on the feeder, and one HJB order per logical order
// referencing it via inputPlanId. Newly written orders are PLANNED.
func (w *Writer) Write(ctx context.Context, taskID, batchID string, orders []*scheduling.LogicalOrder) (scheduling.ResultSummary, error) {
	groups := groupBySyncID(orders)

	feederOrders := make([]workorder.FeederOrder, 0, len(groups))
	packerOrders := make([]workorder.PackerOrder, 0, len(orders))

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return scheduling.ResultSummary{}, err
		}

		start := g.members[0].TargetStart
		end := g.members[0].TargetEnd
		packers := make([]string, 0, len(g.members))
		for _, m := range g.members {
			start = utils.MinTime(start, m.TargetStart)
			end = utils.MaxTime(end, m.TargetEnd)
			packers = append(packers, m.Packer())
		}
		sort.Strings(packers)

		feeder := g.members[0].Feeder
		hwsDate := utils.StartOfDay(start)
		hwsSeq, err := w.allocate(ctx, workorder.KindHWS, hwsDate, 1)
		if err != nil {
			return scheduling.ResultSummary{}, err
		}
		hwsID := workorder.FormatPlanID(workorder.KindHWS, hwsSeq)

		feederOrders = append(feederOrders, workorder.FeederOrder{
			PlanID:         hwsID,
			MachineCode:    feeder,
			ProductionLine: strings.Join(packers, ","),
			MaterialCode:   g.members[0].ArticleNr,
			PlanStart:      start,
			PlanEnd:        end,
			PlanDate:       hwsDate,
			Shift:          w.shiftNameAt(feeder, start),
			TaskID:         taskID,
			Status:         workorder.StatusPlanned,
		})

		for _, m := range g.members {
			hjbDate := utils.StartOfDay(m.TargetStart)
			hjbSeq, err := w.allocate(ctx, workorder.KindHJB, hjbDate, 1)
			if err != nil {
				return scheduling.ResultSummary{}, err
			}
			packerOrders = append(packerOrders, workorder.PackerOrder{
				PlanID:         workorder.FormatPlanID(workorder.KindHJB, hjbSeq),
				ProductionLine: m.Packer(),
				MaterialCode:   m.ArticleNr,
				Quantity:       m.Qty,
				PlanStart:      m.TargetStart,
				PlanEnd:        m.TargetEnd,
				PlanDate:       hjbDate,
				Shift:          w.shiftNameAt(m.Packer(), m.TargetStart),
				InputPlanID:    hwsID,
				InputBatchCode: batchID,
				TaskID:         taskID,
				Status:         workorder.StatusPlanned,
			})
		}
	}

	assignPackerSequences(packerOrders)
	assignFeederSequences(feederOrders)
	markLastFeederOrders(feederOrders)

	if err := w.withRetry(ctx, func() error {
		return w.repo.SaveFeederOrders(ctx, feederOrders)
	}); err != nil {
		return scheduling.ResultSummary{}, err
	}
	if err := w.withRetry(ctx, func() error {
		return w.repo.SavePackerOrders(ctx, packerOrders)
	}); err != nil {
		return scheduling.ResultSummary{}, err
	}

	return scheduling.ResultSummary{
		TotalWorkOrders: len(packerOrders) + len(feederOrders),
		PackingOrders:   len(packerOrders),
		FeedingOrders:   len(feederOrders),
	}, nil
}

func (w *Writer) allocate(ctx context.Context, kind workorder.Kind, date time.Time, n int) (int64, error) {
	var first int64
	err := w.withRetry(ctx, func() error {
		v, err := w.seq.Allocate(ctx, kind, date, n)
		if err != nil {
			return err
		}
		first = v
		return nil
	})
	return first, err
}

// withRetry retries a transient persistence failure with jittered backoff.
// Failures are not retried across stages; this is writer-internal only.
func (w *Writer) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		backoff := time.Duration(attempt+1) * 100 * time.Millisecond
		backoff += time.Duration(rand.Int63n(int64(100 * time.Millisecond)))
		w.clock.Sleep(backoff)
	}
	return scheduling.NewPersistenceError(err)
}

// shiftNameAt returns the shift whose working interval contains the instant,
// or the first shift of that date when the instant sits on a day boundary.
func (w *Writer) shiftNameAt(machineCode string, at time.Time) string {
	shifts := w.snap.ShiftsFor(machineCode, at)
	for _, sh := range shifts {
		start, end := sh.IntervalOn(at)
		if !at.Before(start) && at.Before(end) {
			return sh.ShiftName
		}
	}
	if len(shifts) > 0 {
		return shifts[0].ShiftName
	}
	return ""
}

// assignPackerSequences numbers orders 1..N per (machine, date) in increasing
// planStart order, tie-broken by planId.
func assignPackerSequences(orders []workorder.PackerOrder) {
	byKey := make(map[string][]int)
	for i := range orders {
		key := orders[i].ProductionLine + "|" + orders[i].PlanDate.Format("2006-01-02")
		byKey[key] = append(byKey[key], i)
	}
	for _, idxs := range byKey {
		sort.Slice(idxs, func(a, b int) bool {
			oa, ob := &orders[idxs[a]], &orders[idxs[b]]
			if !oa.PlanStart.Equal(ob.PlanStart) {
				return oa.PlanStart.Before(ob.PlanStart)
			}
			return oa.PlanID < ob.PlanID
		})
		for seq, i := range idxs {
			orders[i].Sequence = seq + 1
		}
	}
}

func assignFeederSequences(orders []workorder.FeederOrder) {
	byKey := make(map[string][]int)
	for i := range orders {
		key := orders[i].MachineCode + "|" + orders[i].PlanDate.Format("2006-01-02")
		byKey[key] = append(byKey[key], i)
	}
	for _, idxs := range byKey {
		sort.Slice(idxs, func(a, b int) bool {
			oa, ob := &orders[idxs[a]], &orders[idxs[b]]
			if !oa.PlanStart.Equal(ob.PlanStart) {
				return oa.PlanStart.Before(ob.PlanStart)
			}
			return oa.PlanID < ob.PlanID
		})
		for seq, i := range idxs {
			orders[i].Sequence = seq + 1
		}
	}
}

// markLastFeederOrders flags the chronologically last HWS order per feeder.
func markLastFeederOrders(orders []workorder.FeederOrder) {
	last := make(map[string]int)
	for i := range orders {
		j, ok := last[orders[i].MachineCode]
		if !ok || orders[i].PlanStart.After(orders[j].PlanStart) {
			last[orders[i].MachineCode] = i
		}
	}
	for _, i := range last {
		orders[i].IsLastOne = true
	}
}
