package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// QueueName is the fixed name of the dispatch queue shared by the
// submission side and the worker pool.
const QueueName = "work-item-queue"

// Load configuration from environment variables and optionally a config file.
// Environment variables (WORKITEM_ prefix) take precedence over values from
// the config file, which takes precedence over defaults.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults: two workers drawing from a single bounded queue, 10ms of
	// simulated latency per unit of value.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("queue.url", "")
	v.SetDefault("queue.name", QueueName)
	v.SetDefault("queue.capacity", 1000)
	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.delay_per_unit", "10ms")

	// Optional config file: ./config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment variables: WORKITEM_SERVER_PORT, WORKITEM_QUEUE_URL, ...
	v.SetEnvPrefix("WORKITEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
