package machine

import "time"

// ShiftWindow defines the working interval of one shift inside a day.
// StartOfDay and EndOfDay are offsets from local midnight; an EndOfDay of
// 24h means the shift runs to the end of the day.
type ShiftWindow struct {
	ShiftName     string
	MachineScope  string // machine code, or Wildcard for all machines
	StartOfDay    time.Duration
	EndOfDay      time.Duration
	MayOvertime   bool
	MaxOvertime   time.Duration
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// AppliesTo reports whether the shift covers the machine on the given day.
func (s *ShiftWindow) AppliesTo(machineCode string, day time.Time) bool {
	if s.MachineScope != Wildcard && s.MachineScope != machineCode {
		return false
	}
	if s.EffectiveFrom != nil && day.Before(startOfDay(*s.EffectiveFrom)) {
		return false
	}
	if s.EffectiveTo != nil && !day.Before(*s.EffectiveTo) {
		return false
	}
	return true
}

// IntervalOn returns the shift's half-open wall-clock interval on a day.
func (s *ShiftWindow) IntervalOn(day time.Time) (time.Time, time.Time) {
	base := startOfDay(day)
	return base.Add(s.StartOfDay), base.Add(s.EndOfDay)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
