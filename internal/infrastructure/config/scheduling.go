package config

import "time"

// SchedulingConfig holds pipeline tuning knobs
type SchedulingConfig struct {
	// Calendar horizon in days, centered on the snapshot instant
	HorizonDays int `mapstructure:"horizon_days" validate:"min=1"`

	// Minimum gap between consecutive orders on one packer
	MinGap time.Duration `mapstructure:"min_gap"`

	// Hard wall-clock limit per scheduling task
	TaskTimeout time.Duration `mapstructure:"task_timeout"`

	// Worker pool size for the daemon
	MaxConcurrentTasks int `mapstructure:"max_concurrent_tasks" validate:"min=1"`

	// Attempts per work-order persistence call before the task fails
	WriterRetries int `mapstructure:"writer_retries" validate:"min=1"`
}

// MESConfig holds the outbound dispatch configuration
type MESConfig struct {
	// Endpoint of the MES ingest API. Empty disables real dispatch; orders
	// are still marked DISPATCHED through the no-op transport.
	Endpoint string `mapstructure:"endpoint"`

	// Orders per second pushed to the endpoint
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`
}
