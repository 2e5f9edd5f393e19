package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

var nonTerminalStatuses = []string{
	string(scheduling.TaskStatusPending),
	string(scheduling.TaskStatusRunning),
}

// GormTaskRepository implements scheduling.TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *scheduling.Task) error {
	model := taskToModel(task)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) Update(ctx context.Context, task *scheduling.Task) error {
	model := taskToModel(task)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) FindByID(ctx context.Context, taskID string) (*scheduling.Task, error) {
	var model SchedulingTaskModel
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return modelToTask(&model), nil
}

// FindActiveByBatch returns the non-terminal task of a batch, or nil.
func (r *GormTaskRepository) FindActiveByBatch(ctx context.Context, batchID string) (*scheduling.Task, error) {
	var model SchedulingTaskModel
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND status IN ?", batchID, nonTerminalStatuses).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active task: %w", err)
	}
	return modelToTask(&model), nil
}

// FindCompleted returns the most recent COMPLETED task for the
// (batchId, flags fingerprint) pair, or nil.
func (r *GormTaskRepository) FindCompleted(ctx context.Context, batchID string, fingerprint string) (*scheduling.Task, error) {
	var model SchedulingTaskModel
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND flags_fingerprint = ? AND status = ?",
			batchID, fingerprint, string(scheduling.TaskStatusCompleted)).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find completed task: %w", err)
	}
	return modelToTask(&model), nil
}

func (r *GormTaskRepository) List(ctx context.Context, filter scheduling.TaskFilter) ([]*scheduling.Task, error) {
	query := r.db.WithContext(ctx).Model(&SchedulingTaskModel{})
	if filter.BatchID != "" {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []SchedulingTaskModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*scheduling.Task, len(models))
	for i := range models {
		tasks[i] = modelToTask(&models[i])
	}
	return tasks, nil
}

func taskToModel(task *scheduling.Task) SchedulingTaskModel {
	flags := task.Flags()
	model := SchedulingTaskModel{
		TaskID:            task.TaskID(),
		BatchID:           task.BatchID(),
		FlagsFingerprint:  flags.Fingerprint(),
		MergeEnabled:      flags.MergeEnabled,
		SplitEnabled:      flags.SplitEnabled,
		CorrectionEnabled: flags.CorrectionEnabled,
		ParallelEnabled:   flags.ParallelEnabled,
		Status:            string(task.Status()),
		CurrentStage:      task.CurrentStage(),
		Progress:          task.Progress(),
		TotalRows:         task.TotalRows(),
		TotalOrders:       task.TotalOrders(),
		StartTime:         task.StartTime(),
		EndTime:           task.EndTime(),
		ErrorMessage:      task.ErrorMessage(),
		CreatedAt:         task.CreatedAt(),
	}
	if s := task.Summary(); s != nil {
		model.TotalWorkOrders = &s.TotalWorkOrders
		model.PackingOrders = &s.PackingOrders
		model.FeedingOrders = &s.FeedingOrders
	}
	return model
}

func modelToTask(m *SchedulingTaskModel) *scheduling.Task {
	var summary *scheduling.ResultSummary
	if m.TotalWorkOrders != nil {
		summary = &scheduling.ResultSummary{
			TotalWorkOrders: *m.TotalWorkOrders,
			PackingOrders:   valueOrZero(m.PackingOrders),
			FeedingOrders:   valueOrZero(m.FeedingOrders),
		}
	}
	return scheduling.ReconstituteTask(
		m.TaskID,
		m.BatchID,
		scheduling.Flags{
			MergeEnabled:      m.MergeEnabled,
			SplitEnabled:      m.SplitEnabled,
			CorrectionEnabled: m.CorrectionEnabled,
			ParallelEnabled:   m.ParallelEnabled,
		},
		scheduling.TaskStatus(m.Status),
		m.CurrentStage,
		m.Progress,
		m.TotalRows,
		m.TotalOrders,
		m.StartTime,
		m.EndTime,
		m.ErrorMessage,
		summary,
		m.CreatedAt,
	)
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
