package pipeline

import (
	"context"
	"time"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/pkg/utils"
)

// DefaultMinGap is the minimum idle time enforced between consecutive orders
// on the same packer.
const DefaultMinGap = 15 * time.Minute

// cancelCheckStride bounds how many orders a stage processes between
// cancellation checks.
const cancelCheckStride = 64

// Corrector recomputes order start/end times from quantity and machine speed,
// honoring the shift calendar and maintenance windows.
type Corrector struct {
	snap   *machine.ReferenceSnapshot
	cal    *Calendar
	minGap time.Duration
}

func NewCorrector(snap *machine.ReferenceSnapshot, cal *Calendar, minGap time.Duration) *Corrector {
	if minGap <= 0 {
		minGap = DefaultMinGap
	}
	return &Corrector{snap: snap, cal: cal, minGap: minGap}
}

// Correct rewrites targetStart/targetEnd of every order in place. Orders on
// the same packer are serialized in input order with the minimum gap between
// them; an interval overlapping feeder maintenance is pushed past the window.
// With correction disabled the planned times pass through unchanged.
func (c *Corrector) Correct(ctx context.Context, orders []*scheduling.LogicalOrder, flags scheduling.Flags) error {
	if !flags.CorrectionEnabled {
		return nil
	}

	lastEnd := make(map[string]time.Time)
	for i, o := range orders {
		if i%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		packer := o.Packer()
		rate, err := c.snap.ResolveSpeed(packer, o.ArticleNr, o.TargetStart)
		if err != nil {
			return err
		}
		hours := float64(o.Qty) / rate

		anchor := o.TargetStart
		if prev, ok := lastEnd[packer]; ok {
			// Local serialization: a later order on the same packer starts
			// no earlier than the previous order's end plus the minimum gap.
			anchor = utils.MaxTime(anchor, prev.Add(c.minGap))
		}

		start, err := c.cal.FirstWorkingInstant(packer, anchor)
		if err != nil {
			return err
		}
		end, err := c.cal.Advance(packer, start, hours)
		if err != nil {
			return err
		}

		start, end, err = c.avoidFeederMaintenance(o.Feeder, packer, start, end, hours)
		if err != nil {
			return err
		}

		o.TargetStart = start
		o.TargetEnd = end
		lastEnd[packer] = end
	}
	return nil
}

// avoidFeederMaintenance pushes the interval past any blocking maintenance
// window on the feeder. The feeder blocks all packer orders it serves over
// the window, so the order restarts at the feeder's next working instant.
func (c *Corrector) avoidFeederMaintenance(feeder, packer string, start, end time.Time, hours float64) (time.Time, time.Time, error) {
	windows := c.snap.MaintenanceFor(feeder)
	for moved := true; moved; {
		moved = false
		for _, w := range windows {
			if !w.Overlaps(start, end) {
				continue
			}
			next, err := c.cal.FirstWorkingInstant(feeder, w.End)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			start, err = c.cal.FirstWorkingInstant(packer, next)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			end, err = c.cal.Advance(packer, start, hours)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			moved = true
		}
	}
	return start, end, nil
}
