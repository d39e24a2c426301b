package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects the in-memory store, which is intended for local
// development and tests only.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// QueueConfig contains the dispatch queue settings.
// An empty URL selects the in-process channel-backed queue; a non-empty URL
// is treated as an AMQP broker address.
type QueueConfig struct {
	URL      string `mapstructure:"url"`
	Name     string `mapstructure:"name"     validate:"required"`
	Capacity int    `mapstructure:"capacity" validate:"required,gt=0"`
}

// WorkerConfig contains the processing worker pool settings.
type WorkerConfig struct {
	// Count is the number of concurrent consumers drawing from the queue.
	Count int `mapstructure:"count" validate:"required,gt=0"`

	// DelayPerUnit scales the simulated processing latency: an item of
	// value v waits v * DelayPerUnit before its result is computed.
	DelayPerUnit time.Duration `mapstructure:"delay_per_unit" validate:"required,gt=0"`
}
