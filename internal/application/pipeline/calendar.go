package pipeline

import (
	"time"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/pkg/utils"
)

// DefaultHorizonDays bounds how far the calendar searches for capacity.
const DefaultHorizonDays = 60

// epsilonHours absorbs float drift when comparing working-time sums.
const epsilonHours = 1e-9

// Interval is a half-open wall-clock interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Hours is the interval length in hours.
func (i Interval) Hours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Calendar maps wall-clock intervals to working time for the machines of a
// reference snapshot. Working time is the part of a shift window not covered
// by an active maintenance window. Shift times are interpreted in the factory
// local time zone; the factory does not observe DST.
type Calendar struct {
	snap    *machine.ReferenceSnapshot
	horizon time.Duration
}

// NewCalendar creates a calendar over a snapshot with the given horizon.
func NewCalendar(snap *machine.ReferenceSnapshot, horizonDays int) *Calendar {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Calendar{
		snap:    snap,
		horizon: time.Duration(horizonDays) * 24 * time.Hour,
	}
}

// WorkingIntervals returns the ordered, disjoint working intervals of a
// machine inside [from, to).
func (c *Calendar) WorkingIntervals(machineCode string, from, to time.Time) ([]Interval, error) {
	if _, err := c.snap.Machine(machineCode); err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, nil
	}

	maintenance := c.snap.MaintenanceFor(machineCode)

	var out []Interval
	for day := utils.StartOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		for _, shift := range c.snap.ShiftsFor(machineCode, day) {
			start, end := shift.IntervalOn(day)
			start = utils.MaxTime(start, from)
			end = utils.MinTime(end, to)
			if !start.Before(end) {
				continue
			}
			out = append(out, subtractMaintenance(Interval{Start: start, End: end}, maintenance)...)
		}
	}
	return out, nil
}

// subtractMaintenance removes the blocked parts of an interval. Windows are
// half-open, so an order may touch but not overlap a maintenance interval.
func subtractMaintenance(iv Interval, windows []machine.MaintenanceWindow) []Interval {
	segments := []Interval{iv}
	for _, w := range windows {
		var next []Interval
		for _, seg := range segments {
			if !w.Overlaps(seg.Start, seg.End) {
				next = append(next, seg)
				continue
			}
			if seg.Start.Before(w.Start) {
				next = append(next, Interval{Start: seg.Start, End: w.Start})
			}
			if w.End.Before(seg.End) {
				next = append(next, Interval{Start: w.End, End: seg.End})
			}
		}
		segments = next
	}
	return segments
}

// Advance returns the smallest t >= anchor such that the machine accumulates
// durationHours of working time in [anchor, t). Fails with NO_CAPACITY when
// the horizon does not hold enough working time.
func (c *Calendar) Advance(machineCode string, anchor time.Time, durationHours float64) (time.Time, error) {
	if durationHours <= 0 {
		return anchor, nil
	}

	intervals, err := c.WorkingIntervals(machineCode, anchor, anchor.Add(c.horizon))
	if err != nil {
		return time.Time{}, err
	}

	remaining := durationHours
	for _, iv := range intervals {
		if remaining <= iv.Hours()+epsilonHours {
			return iv.Start.Add(hoursToDuration(remaining)), nil
		}
		remaining -= iv.Hours()
	}
	return time.Time{}, scheduling.NewNoCapacityError(machineCode, anchor, durationHours)
}

// WorkingHoursBetween measures the working time of a machine in [a, b).
func (c *Calendar) WorkingHoursBetween(machineCode string, a, b time.Time) (float64, error) {
	intervals, err := c.WorkingIntervals(machineCode, a, b)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, iv := range intervals {
		total += iv.Hours()
	}
	return total, nil
}

// FirstWorkingInstant returns the earliest working instant at or after the
// anchor. Fails with NO_CAPACITY when no shift opens within the horizon.
func (c *Calendar) FirstWorkingInstant(machineCode string, anchor time.Time) (time.Time, error) {
	intervals, err := c.WorkingIntervals(machineCode, anchor, anchor.Add(c.horizon))
	if err != nil {
		return time.Time{}, err
	}
	if len(intervals) == 0 {
		return time.Time{}, scheduling.NewNoCapacityError(machineCode, anchor, 0)
	}
	return intervals[0].Start, nil
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
