package scheduling

import "time"

// StageLogEntry is one structured log record emitted by a pipeline stage.
type StageLogEntry struct {
	ID         int64
	TaskID     string
	Stage      string
	Step       string
	Level      string
	Message    string
	Data       map[string]interface{}
	DurationMs int64
	Timestamp  time.Time
}
