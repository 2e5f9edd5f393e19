package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "aps"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "aps"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Scheduling defaults
	if cfg.Scheduling.HorizonDays == 0 {
		cfg.Scheduling.HorizonDays = 60
	}
	if cfg.Scheduling.MinGap == 0 {
		cfg.Scheduling.MinGap = 15 * time.Minute
	}
	if cfg.Scheduling.TaskTimeout == 0 {
		cfg.Scheduling.TaskTimeout = 600 * time.Second
	}
	if cfg.Scheduling.MaxConcurrentTasks == 0 {
		cfg.Scheduling.MaxConcurrentTasks = 4
	}
	if cfg.Scheduling.WriterRetries == 0 {
		cfg.Scheduling.WriterRetries = 3
	}

	// MES defaults
	if cfg.MES.RateLimit == 0 {
		cfg.MES.RateLimit = 5
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
