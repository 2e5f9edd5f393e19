package machine

import "time"

// MaintenanceStatus is the lifecycle status of a maintenance window.
type MaintenanceStatus string

const (
	MaintenancePlanned    MaintenanceStatus = "PLANNED"
	MaintenanceConfirmed  MaintenanceStatus = "CONFIRMED"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCancelled  MaintenanceStatus = "CANCELLED"
)

// MaintenanceWindow blocks a machine over [Start, End) while active.
type MaintenanceWindow struct {
	MachineCode string
	Start       time.Time
	End         time.Time
	Status      MaintenanceStatus
}

// Blocking reports whether the window currently blocks its machine.
func (w *MaintenanceWindow) Blocking() bool {
	switch w.Status {
	case MaintenancePlanned, MaintenanceConfirmed, MaintenanceInProgress:
		return true
	default:
		return false
	}
}

// Overlaps reports whether [from, to) intersects the window.
// Touching endpoints do not overlap: the windows are half-open.
func (w *MaintenanceWindow) Overlaps(from, to time.Time) bool {
	return from.Before(w.End) && w.Start.Before(to)
}
