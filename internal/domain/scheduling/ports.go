package scheduling

import "context"

// TaskFilter narrows ListTasks results. Zero values mean "any".
type TaskFilter struct {
	BatchID  string
	Statuses []TaskStatus
	Offset   int
	Limit    int
}

// TaskRepository handles persistence of scheduling tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, taskID string) (*Task, error)

	// FindActiveByBatch returns the non-terminal task of a batch, or nil.
	FindActiveByBatch(ctx context.Context, batchID string) (*Task, error)

	// FindCompleted returns the most recent COMPLETED task for the
	// (batchId, flags fingerprint) pair, or nil. Used for idempotency.
	FindCompleted(ctx context.Context, batchID string, fingerprint string) (*Task, error)

	List(ctx context.Context, filter TaskFilter) ([]*Task, error)
}

// StageLogRepository persists the stage-log stream.
type StageLogRepository interface {
	Append(ctx context.Context, entry *StageLogEntry) error
	FindByTaskID(ctx context.Context, taskID string) ([]StageLogEntry, error)
}
