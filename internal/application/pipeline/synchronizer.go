package pipeline

import (
	"context"
	"sort"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/pkg/utils"
)

// maxStretchIterations bounds the group-end extension loop. Convergence is
// guaranteed because the group end is nondecreasing and the calendar horizon
// bounds every Advance call.
const maxStretchIterations = 100

// Synchronizer enforces same-start / same-end across the packers that share
// one feeder, and serializes groups competing for the same feeder.
type Synchronizer struct {
	snap *machine.ReferenceSnapshot
	cal  *Calendar
}

func NewSynchronizer(snap *machine.ReferenceSnapshot, cal *Calendar) *Synchronizer {
	return &Synchronizer{snap: snap, cal: cal}
}

type syncGroup struct {
	key     string
	members []*scheduling.LogicalOrder
}

// Sync rewrites every sibling group to a common [groupStart, groupEnd]
// wide enough that each packer can produce its share inside it, and reserves
// the feeder and every member packer over that interval. A later group that
// would overlap a reservation on any of its resources is pushed to start at
// the reservation's end, so packer intervals stay non-overlapping after the
// group rewrite. Skipped entirely when the parallel flag is disabled.
func (s *Synchronizer) Sync(ctx context.Context, orders []*scheduling.LogicalOrder, flags scheduling.Flags) error {
	if !flags.ParallelEnabled {
		return nil
	}

	groups := groupBySyncID(orders)
	reservations := make(map[string][]Interval)

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		resources := groupResources(g)
		groupStart := g.members[0].TargetStart
		groupEnd := g.members[0].TargetEnd
		for _, m := range g.members[1:] {
			groupStart = utils.MinTime(groupStart, m.TargetStart)
			groupEnd = utils.MaxTime(groupEnd, m.TargetEnd)
		}

		// Alternate pushing past reservations and stretching until both are
		// stable: stretching can grow the group into a later reservation, and
		// pushing moves the window the stretch was computed for.
		for iter := 0; iter < maxStretchIterations; iter++ {
			pushed := false
			for _, res := range heldReservations(resources, reservations) {
				if res.Overlaps(Interval{Start: groupStart, End: groupEnd}) && groupStart.Before(res.End) {
					groupStart = res.End
					pushed = true
				}
			}
			groupEnd = utils.MaxTime(groupEnd, groupStart)

			// Extend the group end until every packer has enough working
			// time for its share.
			extended := false
			for _, m := range g.members {
				packer := m.Packer()
				rate, err := s.snap.ResolveSpeed(packer, m.ArticleNr, groupStart)
				if err != nil {
					return err
				}
				need := float64(m.Qty) / rate
				have, err := s.cal.WorkingHoursBetween(packer, groupStart, groupEnd)
				if err != nil {
					return err
				}
				if have+epsilonHours >= need {
					continue
				}
				candidate, err := s.cal.Advance(packer, groupStart, need)
				if err != nil {
					return err
				}
				if candidate.After(groupEnd) {
					groupEnd = candidate
					extended = true
				}
			}
			if !pushed && !extended {
				break
			}
		}

		for _, m := range g.members {
			m.TargetStart = groupStart
			m.TargetEnd = groupEnd
		}
		window := Interval{Start: groupStart, End: groupEnd}
		for _, r := range resources {
			reservations[r] = append(reservations[r], window)
		}
	}
	return nil
}

// groupResources returns the machines a group occupies: its feeder plus each
// member's packer.
func groupResources(g *syncGroup) []string {
	resources := []string{g.members[0].Feeder}
	seen := map[string]bool{}
	for _, m := range g.members {
		p := m.Packer()
		if !seen[p] {
			seen[p] = true
			resources = append(resources, p)
		}
	}
	return resources
}

// heldReservations collects the reservations on the given machines in
// chronological order, so a single pass pushes the group past each in turn.
func heldReservations(resources []string, reservations map[string][]Interval) []Interval {
	var held []Interval
	for _, r := range resources {
		held = append(held, reservations[r]...)
	}
	sort.Slice(held, func(i, j int) bool { return held[i].Start.Before(held[j].Start) })
	return held
}

// groupBySyncID groups split siblings, preserving input order. Orders with
// no sync group are singleton groups keyed by their own id.
func groupBySyncID(orders []*scheduling.LogicalOrder) []*syncGroup {
	byKey := make(map[string]*syncGroup)
	var groups []*syncGroup
	for _, o := range orders {
		key := o.SyncGroupID
		if key == "" {
			key = o.ID
		}
		g, ok := byKey[key]
		if !ok {
			g = &syncGroup{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, o)
	}
	return groups
}
