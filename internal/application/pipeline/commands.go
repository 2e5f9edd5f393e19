package pipeline

import (
	"context"
	"fmt"

	"github.com/factoryplan/aps-go/internal/application/common"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

// StartTaskCommand starts a scheduling task for an imported plan batch.
type StartTaskCommand struct {
	BatchID    string
	Flags      scheduling.Flags
	ForceRerun bool
}

// StartTaskResponse returns the task the command resolved to. For an
// idempotent hit this is the previously completed task.
type StartTaskResponse struct {
	TaskID string
	Status scheduling.TaskStatus
}

// StartTaskHandler registers the task and hands it to the worker pool.
type StartTaskHandler struct {
	orch *Orchestrator
	pool *TaskWorkerPool
}

func NewStartTaskHandler(orch *Orchestrator, pool *TaskWorkerPool) *StartTaskHandler {
	return &StartTaskHandler{orch: orch, pool: pool}
}

func (h *StartTaskHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	task, err := h.orch.StartTask(ctx, cmd.BatchID, cmd.Flags, cmd.ForceRerun)
	if err != nil {
		return nil, err
	}
	if task.Status() == scheduling.TaskStatusPending {
		h.pool.Submit(task.TaskID())
	}
	return &StartTaskResponse{TaskID: task.TaskID(), Status: task.Status()}, nil
}

// GetTaskQuery fetches one scheduling task.
type GetTaskQuery struct {
	TaskID string
}

type GetTaskHandler struct {
	orch *Orchestrator
}

func NewGetTaskHandler(orch *Orchestrator) *GetTaskHandler {
	return &GetTaskHandler{orch: orch}
}

func (h *GetTaskHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetTaskQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.orch.GetTask(ctx, query.TaskID)
}

// CancelTaskCommand requests cooperative cancellation of a task.
type CancelTaskCommand struct {
	TaskID string
}

type CancelTaskHandler struct {
	orch *Orchestrator
}

func NewCancelTaskHandler(orch *Orchestrator) *CancelTaskHandler {
	return &CancelTaskHandler{orch: orch}
}

func (h *CancelTaskHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CancelTaskCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return nil, h.orch.CancelTask(ctx, cmd.TaskID)
}

// ListTasksQuery pages through scheduling tasks.
type ListTasksQuery struct {
	Filter scheduling.TaskFilter
}

type ListTasksHandler struct {
	orch *Orchestrator
}

func NewListTasksHandler(orch *Orchestrator) *ListTasksHandler {
	return &ListTasksHandler{orch: orch}
}

func (h *ListTasksHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListTasksQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.orch.ListTasks(ctx, query.Filter)
}
