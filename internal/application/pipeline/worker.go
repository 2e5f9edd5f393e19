package pipeline

import (
	"context"
	"time"

	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

// DefaultWorkerCount is how many scheduling tasks may run concurrently.
// Tasks on distinct batches are independent; the orchestrator rejects a
// second task on the same batch.
const DefaultWorkerCount = 4

const pendingScanInterval = 10 * time.Second

// TaskWorkerPool executes scheduling tasks on a fixed set of workers.
// Submitted tasks are queued; a periodic scan picks up PENDING tasks that
// were left behind by a restart.
type TaskWorkerPool struct {
	orch     *Orchestrator
	taskRepo scheduling.TaskRepository
	queue    chan string
	workers  int
}

func NewTaskWorkerPool(orch *Orchestrator, taskRepo scheduling.TaskRepository, workers int) *TaskWorkerPool {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &TaskWorkerPool{
		orch:     orch,
		taskRepo: taskRepo,
		queue:    make(chan string, 64),
		workers:  workers,
	}
}

// Submit queues a task for execution. Non-blocking; a full queue is fine
// because the pending scan will pick the task up later.
func (p *TaskWorkerPool) Submit(taskID string) {
	select {
	case p.queue <- taskID:
	default:
	}
}

// Run blocks until the context is done, dispatching queued tasks to workers.
func (p *TaskWorkerPool) Run(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx)
	}

	ticker := time.NewTicker(pendingScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.enqueuePending(ctx)
		}
	}
}

func (p *TaskWorkerPool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case taskID := <-p.queue:
			// Run handles its own timeout and terminal-state recording.
			_ = p.orch.Run(ctx, taskID)
		}
	}
}

func (p *TaskWorkerPool) enqueuePending(ctx context.Context) {
	tasks, err := p.taskRepo.List(ctx, scheduling.TaskFilter{
		Statuses: []scheduling.TaskStatus{scheduling.TaskStatusPending},
		Limit:    p.workers,
	})
	if err != nil {
		return
	}
	for _, t := range tasks {
		p.Submit(t.TaskID())
	}
}
