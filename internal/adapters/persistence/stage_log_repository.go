package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

// GormStageLogRepository implements scheduling.StageLogRepository using GORM.
// Structured data is serialized to JSON text.
type GormStageLogRepository struct {
	db *gorm.DB
}

func NewGormStageLogRepository(db *gorm.DB) *GormStageLogRepository {
	return &GormStageLogRepository{db: db}
}

func (r *GormStageLogRepository) Append(ctx context.Context, entry *scheduling.StageLogEntry) error {
	model := StageLogModel{
		TaskID:     entry.TaskID,
		Stage:      entry.Stage,
		Step:       entry.Step,
		Level:      entry.Level,
		Message:    entry.Message,
		DurationMs: entry.DurationMs,
		Timestamp:  entry.Timestamp,
	}
	if len(entry.Data) > 0 {
		data, err := json.Marshal(entry.Data)
		if err != nil {
			return fmt.Errorf("failed to serialize log data: %w", err)
		}
		model.Data = string(data)
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append stage log: %w", err)
	}
	entry.ID = model.ID
	return nil
}

func (r *GormStageLogRepository) FindByTaskID(ctx context.Context, taskID string) ([]scheduling.StageLogEntry, error) {
	var models []StageLogModel
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stage logs: %w", err)
	}

	entries := make([]scheduling.StageLogEntry, len(models))
	for i, m := range models {
		entry := scheduling.StageLogEntry{
			ID:         m.ID,
			TaskID:     m.TaskID,
			Stage:      m.Stage,
			Step:       m.Step,
			Level:      m.Level,
			Message:    m.Message,
			DurationMs: m.DurationMs,
			Timestamp:  m.Timestamp,
		}
		if m.Data != "" {
			var data map[string]interface{}
			if err := json.Unmarshal([]byte(m.Data), &data); err == nil {
				entry.Data = data
			}
		}
		entries[i] = entry
	}
	return entries, nil
}
