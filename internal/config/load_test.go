package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Queue.URL)
	assert.Equal(t, QueueName, cfg.Queue.Name)
	assert.Equal(t, 1000, cfg.Queue.Capacity)
	assert.Equal(t, 2, cfg.Worker.Count)
	assert.Equal(t, 10*time.Millisecond, cfg.Worker.DelayPerUnit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORKITEM_SERVER_PORT", "9191")
	t.Setenv("WORKITEM_SERVER_LOG_LEVEL", "debug")
	t.Setenv("WORKITEM_QUEUE_CAPACITY", "50")
	t.Setenv("WORKITEM_WORKER_COUNT", "4")
	t.Setenv("WORKITEM_WORKER_DELAY_PER_UNIT", "1ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 50, cfg.Queue.Capacity)
	assert.Equal(t, 4, cfg.Worker.Count)
	assert.Equal(t, time.Millisecond, cfg.Worker.DelayPerUnit)
}

func TestLoad_ValidationFailures(t *testing.T) {
	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("WORKITEM_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("WORKITEM_SERVER_PORT", "0")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid worker count", func(t *testing.T) {
		t.Setenv("WORKITEM_WORKER_COUNT", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}
