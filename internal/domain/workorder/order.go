package workorder

import (
	"fmt"
	"regexp"
	"time"
)

// Kind distinguishes packer (HJB) from feeder (HWS) work orders.
type Kind string

const (
	KindHJB Kind = "HJB" // packer-machine order
	KindHWS Kind = "HWS" // feeder-machine order
)

// Status is the lifecycle status of a work order.
type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusDispatched Status = "DISPATCHED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var planIDPattern = regexp.MustCompile(`^(HJB|HWS)[0-9]{9}$`)

// FormatPlanID builds a wire-level plan id: kind prefix plus the zero-padded
// 9-digit daily sequence value. Dates are not embedded; they live in PlanDate.
func FormatPlanID(kind Kind, sequence int64) string {
	return fmt.Sprintf("%s%09d", kind, sequence)
}

// ValidPlanID reports whether an id matches the wire format.
func ValidPlanID(id string) bool {
	return planIDPattern.MatchString(id)
}

// PackerOrder is an HJB work order for one packing machine.
type PackerOrder struct {
	PlanID         string
	ProductionLine string // packer machine code
	MaterialCode   string
	Quantity       int
	PlanStart      time.Time
	PlanEnd        time.Time
	Sequence       int
	PlanDate       time.Time // local date of PlanStart
	Shift          string
	InputPlanID    string // plan id of the feeder order serving this one
	InputBatchCode string
	TaskID         string
	Status         Status
}

// FeederOrder is an HWS work order for one feeding machine. ProductionLine
// carries the comma-joined packer codes the feeder serves in this order;
// MachineCode is the feeder itself.
type FeederOrder struct {
	PlanID         string
	MachineCode    string
	ProductionLine string
	MaterialCode   string
	PlanStart      time.Time
	PlanEnd        time.Time
	Sequence       int
	PlanDate       time.Time
	Shift          string
	TaskID         string
	SafetyStock    int
	IsLastOne      bool
	Status         Status
}
