package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "http://library:8080", cfg.LibraryBaseURL)
	assert.Equal(t, "http://reservation:8080", cfg.ReservationBaseURL)
	assert.Equal(t, "http://rating:8080", cfg.RatingBaseURL)
	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.BreakerBreakDuration)
	assert.Equal(t, 10*time.Second, cfg.QueueTaskTimeout)
	assert.Equal(t, 2*time.Second, cfg.QueueRetryBackoff)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableInboundBreaker)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LIBRARY_SERVICE_URL", "http://localhost:8060")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")
	t.Setenv("BREAKER_BREAK_DURATION", "30s")
	t.Setenv("ENABLE_METRICS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8060", cfg.LibraryBaseURL)
	assert.Equal(t, 3, cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerBreakDuration)
	assert.False(t, cfg.EnableMetrics)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("rejects relative service URL", func(t *testing.T) {
		t.Setenv("RATING_SERVICE_URL", "rating:8080")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "RATING_SERVICE_URL")
	})

	t.Run("rejects non-positive threshold", func(t *testing.T) {
		t.Setenv("BREAKER_FAILURE_THRESHOLD", "0")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "BREAKER_FAILURE_THRESHOLD")
	})
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := []byte(`breaker:
  failureThreshold: 7
  breakDuration: 20s
queue:
  taskTimeout: 15s
  retryBackoff: 3s
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	overrides, err := loadOverridesFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7, overrides.Breaker.FailureThreshold)
	assert.Equal(t, 20*time.Second, overrides.Breaker.BreakDuration)
	assert.Equal(t, 15*time.Second, overrides.Queue.TaskTimeout)
	assert.Equal(t, 3*time.Second, overrides.Queue.RetryBackoff)
	assert.NoError(t, overrides.validate())
}

func TestOverridesWatcher_GetCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := []byte(`breaker:
  failureThreshold: 3
  breakDuration: 5s
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	watcher, err := NewOverridesWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	// The file's values are visible immediately, before any change event.
	current := watcher.GetCurrent()
	require.NotNil(t, current)
	assert.Equal(t, 3, current.Breaker.FailureThreshold)
	assert.Equal(t, 5*time.Second, current.Breaker.BreakDuration)
}

func TestOverrides_Validate(t *testing.T) {
	overrides := &Overrides{
		Breaker: BreakerOverrides{FailureThreshold: 5, BreakDuration: 10 * time.Second},
	}
	assert.NoError(t, overrides.validate())

	overrides.Breaker.BreakDuration = 0
	assert.ErrorContains(t, overrides.validate(), "breakDuration")
}

func TestOverridesFromConfig(t *testing.T) {
	cfg := &Config{
		BreakerFailureThreshold: 4,
		BreakerBreakDuration:    8 * time.Second,
		QueueTaskTimeout:        12 * time.Second,
		QueueRetryBackoff:       time.Second,
	}

	overrides := OverridesFromConfig(cfg)
	assert.Equal(t, 4, overrides.Breaker.FailureThreshold)
	assert.Equal(t, 8*time.Second, overrides.Breaker.BreakDuration)
	assert.Equal(t, 12*time.Second, overrides.Queue.TaskTimeout)
	assert.Equal(t, time.Second, overrides.Queue.RetryBackoff)
}
