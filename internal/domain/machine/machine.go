package machine

// Kind distinguishes packers from feeders.
type Kind string

const (
	KindPacker Kind = "PACKER"
	KindFeeder Kind = "FEEDER"
)

// Status is the operational status of a machine.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Machine is a packing or feeding machine. Codes are globally unique.
type Machine struct {
	Code   string
	Kind   Kind
	Status Status
}
