package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle status of a scheduling task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusRunning   TaskStatus = "RUNNING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// Stage names in pipeline order.
const (
	StageLoad    = "load"
	StageMerge   = "merge"
	StageSplit   = "split"
	StageCorrect = "correct"
	StageSync    = "sync"
	StageWrite   = "write"
)

// StageProgress is the cumulative progress after each stage completes.
// The per-stage shares are 5/20/15/25/15/20.
var StageProgress = map[string]int{
	StageLoad:    5,
	StageMerge:   25,
	StageSplit:   40,
	StageCorrect: 65,
	StageSync:    80,
	StageWrite:   100,
}

// ResultSummary counts the work orders a completed task produced.
type ResultSummary struct {
	TotalWorkOrders int
	PackingOrders   int
	FeedingOrders   int
}

// Task is one scheduling run over a plan batch. It exclusively owns the work
// orders written under its id; cancellation or failure deletes them.
//
// State machine:
//
//	PENDING -> RUNNING -> COMPLETED
//	                  \-> FAILED
//	                  \-> CANCELLED
type Task struct {
	taskID  string
	batchID string
	flags   Flags

	status       TaskStatus
	currentStage string
	progress     int

	totalRows   int
	totalOrders int

	startTime *time.Time
	endTime   *time.Time

	errorMessage string
	summary      *ResultSummary

	createdAt time.Time
}

// NewTask creates a PENDING task for a batch.
func NewTask(batchID string, flags Flags, now time.Time) *Task {
	return &Task{
		taskID:    uuid.New().String(),
		batchID:   batchID,
		flags:     flags,
		status:    TaskStatusPending,
		createdAt: now,
	}
}

// ReconstituteTask rebuilds a task from persistence.
func ReconstituteTask(
	taskID string,
	batchID string,
	flags Flags,
	status TaskStatus,
	currentStage string,
	progress int,
	totalRows int,
	totalOrders int,
	startTime *time.Time,
	endTime *time.Time,
	errorMessage string,
	summary *ResultSummary,
	createdAt time.Time,
) *Task {
	return &Task{
		taskID:       taskID,
		batchID:      batchID,
		flags:        flags,
		status:       status,
		currentStage: currentStage,
		progress:     progress,
		totalRows:    totalRows,
		totalOrders:  totalOrders,
		startTime:    startTime,
		endTime:      endTime,
		errorMessage: errorMessage,
		summary:      summary,
		createdAt:    createdAt,
	}
}

// Getters

func (t *Task) TaskID() string          { return t.taskID }
func (t *Task) BatchID() string         { return t.batchID }
func (t *Task) Flags() Flags            { return t.flags }
func (t *Task) Status() TaskStatus      { return t.status }
func (t *Task) CurrentStage() string    { return t.currentStage }
func (t *Task) Progress() int           { return t.progress }
func (t *Task) TotalRows() int          { return t.totalRows }
func (t *Task) TotalOrders() int        { return t.totalOrders }
func (t *Task) StartTime() *time.Time   { return t.startTime }
func (t *Task) EndTime() *time.Time     { return t.endTime }
func (t *Task) ErrorMessage() string    { return t.errorMessage }
func (t *Task) Summary() *ResultSummary { return t.summary }
func (t *Task) CreatedAt() time.Time    { return t.createdAt }

// IsTerminal reports whether the task reached a final state.
func (t *Task) IsTerminal() bool {
	switch t.status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// ErrInvalidTaskTransition reports a forbidden task state change.
type ErrInvalidTaskTransition struct {
	TaskID string
	From   TaskStatus
	To     TaskStatus
}

func (e *ErrInvalidTaskTransition) Error() string {
	return fmt.Sprintf("task %s: invalid transition %s -> %s", e.TaskID, e.From, e.To)
}

// Start transitions PENDING -> RUNNING and enters the load stage.
func (t *Task) Start(now time.Time) error {
	if t.status != TaskStatusPending {
		return &ErrInvalidTaskTransition{TaskID: t.taskID, From: t.status, To: TaskStatusRunning}
	}
	t.status = TaskStatusRunning
	t.currentStage = StageLoad
	t.progress = 0
	t.startTime = &now
	return nil
}

// EnterStage records the stage about to run.
func (t *Task) EnterStage(stage string) {
	t.currentStage = stage
}

// CompleteStage records stage completion and advances progress.
func (t *Task) CompleteStage(stage string) {
	if p, ok := StageProgress[stage]; ok && p > t.progress {
		t.progress = p
	}
}

// SetTotals records the row and order counts observed while running.
func (t *Task) SetTotals(rows, orders int) {
	t.totalRows = rows
	t.totalOrders = orders
}

// Complete transitions RUNNING -> COMPLETED.
func (t *Task) Complete(summary ResultSummary, now time.Time) error {
	if t.status != TaskStatusRunning {
		return &ErrInvalidTaskTransition{TaskID: t.taskID, From: t.status, To: TaskStatusCompleted}
	}
	t.status = TaskStatusCompleted
	t.progress = 100
	t.summary = &summary
	t.endTime = &now
	return nil
}

// Fail transitions RUNNING -> FAILED with the stable error kind as message.
func (t *Task) Fail(message string, now time.Time) error {
	if t.status != TaskStatusRunning {
		return &ErrInvalidTaskTransition{TaskID: t.taskID, From: t.status, To: TaskStatusFailed}
	}
	t.status = TaskStatusFailed
	t.errorMessage = message
	t.endTime = &now
	return nil
}

// Cancel transitions PENDING or RUNNING -> CANCELLED.
func (t *Task) Cancel(now time.Time) error {
	if t.status != TaskStatusPending && t.status != TaskStatusRunning {
		return &ErrInvalidTaskTransition{TaskID: t.taskID, From: t.status, To: TaskStatusCancelled}
	}
	t.status = TaskStatusCancelled
	t.errorMessage = string(KindCancelled)
	t.endTime = &now
	return nil
}
