package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/shared"
)

// ErrorKind is the stable error identifier surfaced through a task's
// errorMessage and in stage logs.
type ErrorKind string

const (
	KindInvalidTopology    ErrorKind = "INVALID_TOPOLOGY"
	KindSplitRequired      ErrorKind = "SPLIT_REQUIRED"
	KindNoCapacity         ErrorKind = "NO_CAPACITY"
	KindUnknownMachine     ErrorKind = "UNKNOWN_MACHINE"
	KindUnknownArticle     ErrorKind = "UNKNOWN_ARTICLE"
	KindTaskAlreadyRunning ErrorKind = "TASK_ALREADY_RUNNING"
	KindCancelled          ErrorKind = "CANCELLED"
	KindTimeout            ErrorKind = "TIMEOUT"
	KindPersistenceFailed  ErrorKind = "PERSISTENCE_FAILED"
	KindInternal           ErrorKind = "INTERNAL"
)

// InvalidTopologyError is raised by the merger for rows that name more than
// one packer and more than one feeder at once.
type InvalidTopologyError struct {
	*shared.DomainError
	Rows []int64
}

func NewInvalidTopologyError(rows []int64) *InvalidTopologyError {
	return &InvalidTopologyError{
		DomainError: shared.NewDomainError(
			fmt.Sprintf("rows %v relate multiple packers to multiple feeders", rows)),
		Rows: rows,
	}
}

// SplitRequiredError is raised when a multi-packer order reaches the splitter
// while splitting is disabled.
type SplitRequiredError struct {
	*shared.DomainError
	OrderID string
	Packers []string
}

func NewSplitRequiredError(orderID string, packers []string) *SplitRequiredError {
	return &SplitRequiredError{
		DomainError: shared.NewDomainError(
			fmt.Sprintf("order %s spans packers %v but splitting is disabled", orderID, packers)),
		OrderID: orderID,
		Packers: packers,
	}
}

// NoCapacityError is raised by the calendar when an order cannot be placed
// within the scheduling horizon.
type NoCapacityError struct {
	*shared.DomainError
	MachineCode string
	Anchor      time.Time
	Hours       float64
}

func NewNoCapacityError(machineCode string, anchor time.Time, hours float64) *NoCapacityError {
	return &NoCapacityError{
		DomainError: shared.NewDomainError(fmt.Sprintf(
			"machine %s has no %.2fh of working time within the horizon after %s",
			machineCode, hours, anchor.Format(time.RFC3339))),
		MachineCode: machineCode,
		Anchor:      anchor,
		Hours:       hours,
	}
}

// TaskAlreadyRunningError is returned when a batch already has a non-terminal
// scheduling task.
type TaskAlreadyRunningError struct {
	*shared.DomainError
	BatchID string
	TaskID  string
}

func NewTaskAlreadyRunningError(batchID, taskID string) *TaskAlreadyRunningError {
	return &TaskAlreadyRunningError{
		DomainError: shared.NewDomainError(
			fmt.Sprintf("batch %s already has running task %s", batchID, taskID)),
		BatchID: batchID,
		TaskID:  taskID,
	}
}

// PersistenceError wraps a store failure that survived the writer's retries.
type PersistenceError struct {
	*shared.DomainError
	Cause error
}

func NewPersistenceError(cause error) *PersistenceError {
	return &PersistenceError{
		DomainError: shared.NewDomainError(fmt.Sprintf("persistence failed: %v", cause)),
		Cause:       cause,
	}
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// KindOf maps an error to its stable kind for logs and task errorMessage.
func KindOf(err error) ErrorKind {
	var (
		topo    *InvalidTopologyError
		split   *SplitRequiredError
		noCap   *NoCapacityError
		unkMach *machine.UnknownMachineError
		unkArt  *machine.UnknownArticleError
		running *TaskAlreadyRunningError
		persist *PersistenceError
	)
	switch {
	case errors.As(err, &topo):
		return KindInvalidTopology
	case errors.As(err, &split):
		return KindSplitRequired
	case errors.As(err, &noCap):
		return KindNoCapacity
	case errors.As(err, &unkMach):
		return KindUnknownMachine
	case errors.As(err, &unkArt):
		return KindUnknownArticle
	case errors.As(err, &running):
		return KindTaskAlreadyRunning
	case errors.As(err, &persist):
		return KindPersistenceFailed
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindInternal
	}
}
