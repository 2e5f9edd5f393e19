package machine

import (
	"sort"
	"time"
)

// ReferenceSnapshot is the read-only view of the reference data a scheduling
// task works against. It is built once at task start and shared by all
// pipeline stages of that task; it is safe for concurrent reads.
type ReferenceSnapshot struct {
	machines map[string]Machine
	byKind   map[Kind][]Machine

	// Adjacency maps derived from the relation table. Relations reference
	// machines by code, never by pointer.
	packersByFeeder map[string][]Relation
	feedersByPacker map[string][]Relation

	speeds      []Speed
	shifts      []ShiftWindow
	maintenance map[string][]MaintenanceWindow

	takenAt time.Time
}

// NewReferenceSnapshot indexes the raw reference data for task-scoped lookups.
func NewReferenceSnapshot(
	machines []Machine,
	relations []Relation,
	speeds []Speed,
	shifts []ShiftWindow,
	maintenance []MaintenanceWindow,
	takenAt time.Time,
) *ReferenceSnapshot {
	s := &ReferenceSnapshot{
		machines:        make(map[string]Machine, len(machines)),
		byKind:          make(map[Kind][]Machine),
		packersByFeeder: make(map[string][]Relation),
		feedersByPacker: make(map[string][]Relation),
		speeds:          speeds,
		shifts:          shifts,
		maintenance:     make(map[string][]MaintenanceWindow),
		takenAt:         takenAt,
	}

	for _, m := range machines {
		s.machines[m.Code] = m
		s.byKind[m.Kind] = append(s.byKind[m.Kind], m)
	}
	for _, kind := range []Kind{KindPacker, KindFeeder} {
		sort.Slice(s.byKind[kind], func(i, j int) bool {
			return s.byKind[kind][i].Code < s.byKind[kind][j].Code
		})
	}

	for _, r := range relations {
		s.packersByFeeder[r.FeederCode] = append(s.packersByFeeder[r.FeederCode], r)
		s.feedersByPacker[r.MakerCode] = append(s.feedersByPacker[r.MakerCode], r)
	}
	for _, rels := range s.packersByFeeder {
		sortRelations(rels)
	}
	for _, rels := range s.feedersByPacker {
		sortRelations(rels)
	}

	for _, w := range maintenance {
		if w.Blocking() {
			s.maintenance[w.MachineCode] = append(s.maintenance[w.MachineCode], w)
		}
	}
	for _, windows := range s.maintenance {
		sort.Slice(windows, func(i, j int) bool {
			return windows[i].Start.Before(windows[j].Start)
		})
	}

	return s
}

func sortRelations(rels []Relation) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Priority != rels[j].Priority {
			return rels[i].Priority < rels[j].Priority
		}
		return rels[i].MakerCode < rels[j].MakerCode
	})
}

// TakenAt is the instant the snapshot was taken.
func (s *ReferenceSnapshot) TakenAt() time.Time {
	return s.takenAt
}

// Machine returns a machine by code.
func (s *ReferenceSnapshot) Machine(code string) (Machine, error) {
	m, ok := s.machines[code]
	if !ok {
		return Machine{}, NewUnknownMachineError(code)
	}
	return m, nil
}

// MachinesByKind returns all machines of a kind, ordered by code.
func (s *ReferenceSnapshot) MachinesByKind(kind Kind) []Machine {
	return s.byKind[kind]
}

// RelationsForFeeder returns the relations of a feeder active at the given
// instant, ordered by priority.
func (s *ReferenceSnapshot) RelationsForFeeder(code string, at time.Time) []Relation {
	return activeRelations(s.packersByFeeder[code], at)
}

// FeedersForPacker returns the relations serving a packer active at the
// given instant, ordered by priority.
func (s *ReferenceSnapshot) FeedersForPacker(code string, at time.Time) []Relation {
	return activeRelations(s.feedersByPacker[code], at)
}

func activeRelations(rels []Relation, at time.Time) []Relation {
	out := make([]Relation, 0, len(rels))
	for _, r := range rels {
		if r.ActiveAt(at) {
			out = append(out, r)
		}
	}
	return out
}

// ResolveSpeed returns the effective production rate in boxes per hour for
// (machine, article). Resolution order: exact match, machine wildcard-article,
// wildcard-machine article, full wildcard.
func (s *ReferenceSnapshot) ResolveSpeed(machineCode, articleNr string, _ time.Time) (float64, error) {
	if _, ok := s.machines[machineCode]; !ok {
		return 0, NewUnknownMachineError(machineCode)
	}

	best := -1
	var bestSpeed Speed
	for _, sp := range s.speeds {
		if !sp.matches(machineCode, articleNr) {
			continue
		}
		if spec := sp.specificity(); spec > best {
			best = spec
			bestSpeed = sp
		}
	}
	if best < 0 {
		return 0, NewUnknownArticleError(machineCode, articleNr)
	}
	return bestSpeed.EffectiveRate(), nil
}

// ShiftsFor returns the working intervals of a machine on a day, ordered by
// start. A machine-specific shift set overrides the wildcard shifts for that
// machine on that day.
func (s *ReferenceSnapshot) ShiftsFor(machineCode string, day time.Time) []ShiftWindow {
	var specific, wildcard []ShiftWindow
	for _, sh := range s.shifts {
		if !sh.AppliesTo(machineCode, day) {
			continue
		}
		if sh.MachineScope == Wildcard {
			wildcard = append(wildcard, sh)
		} else {
			specific = append(specific, sh)
		}
	}
	shifts := wildcard
	if len(specific) > 0 {
		shifts = specific
	}
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].StartOfDay < shifts[j].StartOfDay
	})
	return shifts
}

// MaintenanceFor returns the blocking maintenance windows of a machine,
// ordered by start.
func (s *ReferenceSnapshot) MaintenanceFor(machineCode string) []MaintenanceWindow {
	return s.maintenance[machineCode]
}
