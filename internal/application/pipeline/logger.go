package pipeline

import (
	"context"

	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/internal/domain/shared"
)

// stageLogger persists structured stage log entries for one (task, stage)
// pair. It satisfies common.StageLogger so stages can pick it up from the
// context without knowing about persistence.
type stageLogger struct {
	repo   scheduling.StageLogRepository
	clock  shared.Clock
	taskID string
	stage  string
}

func newStageLogger(repo scheduling.StageLogRepository, clock shared.Clock, taskID, stage string) *stageLogger {
	return &stageLogger{repo: repo, clock: clock, taskID: taskID, stage: stage}
}

func (l *stageLogger) Log(level, message string, data map[string]interface{}) {
	l.append("", level, message, data, 0)
}

// LogStep records a named step with its duration.
func (l *stageLogger) LogStep(step, level, message string, data map[string]interface{}, durationMs int64) {
	l.append(step, level, message, data, durationMs)
}

func (l *stageLogger) append(step, level, message string, data map[string]interface{}, durationMs int64) {
	// Log persistence failures must never fail the task.
	_ = l.repo.Append(context.Background(), &scheduling.StageLogEntry{
		TaskID:     l.taskID,
		Stage:      l.stage,
		Step:       step,
		Level:      level,
		Message:    message,
		Data:       data,
		DurationMs: durationMs,
		Timestamp:  l.clock.Now(),
	})
}
