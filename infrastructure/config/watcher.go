package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// OverridesWatcher watches the overrides file for changes
type OverridesWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Overrides
	mu       sync.RWMutex
	onChange []func(*Overrides)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// Overrides holds the settings that can change at runtime without a restart
type Overrides struct {
	Breaker BreakerOverrides `yaml:"breaker"`
	Queue   QueueOverrides   `yaml:"queue"`
}

// BreakerOverrides tunes the outbound circuit breaker
type BreakerOverrides struct {
	FailureThreshold int           `yaml:"failureThreshold"`
	BreakDuration    time.Duration `yaml:"breakDuration"`
}

// QueueOverrides tunes the deferred operation queue
type QueueOverrides struct {
	TaskTimeout  time.Duration `yaml:"taskTimeout"`
	RetryBackoff time.Duration `yaml:"retryBackoff"`
}

// NewOverridesWatcher creates a watcher over the given overrides file
func NewOverridesWatcher(path string, logger *zap.Logger) (*OverridesWatcher, error) {
	overrides, err := loadOverridesFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial overrides: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch overrides file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("Failed to watch overrides directory", zap.Error(err))
	}

	return &OverridesWatcher{
		path:     path,
		watcher:  watcher,
		current:  overrides,
		onChange: make([]func(*Overrides), 0),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching for changes
func (w *OverridesWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Overrides watcher started", zap.String("path", w.path))
}

// Stop stops watching for changes
func (w *OverridesWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("Overrides watcher stopped")
}

func (w *OverridesWatcher) watchLoop() {
	// Debounce timer to avoid multiple reloads
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(debounceDuration, func() {
					w.handleChange()
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *OverridesWatcher) handleChange() {
	w.logger.Info("Overrides file changed, reloading", zap.String("path", w.path))

	overrides, err := loadOverridesFromFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload overrides", zap.Error(err))
		return
	}

	if err := overrides.validate(); err != nil {
		w.logger.Error("Invalid overrides, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = overrides
	handlers := w.onChange
	w.mu.Unlock()

	w.logChanges(old, overrides)

	for _, handler := range handlers {
		go handler(overrides)
	}
}

func (o *Overrides) validate() error {
	if o.Breaker.FailureThreshold <= 0 {
		return fmt.Errorf("breaker.failureThreshold must be positive")
	}
	if o.Breaker.BreakDuration <= 0 {
		return fmt.Errorf("breaker.breakDuration must be positive")
	}
	if o.Queue.TaskTimeout < 0 {
		return fmt.Errorf("queue.taskTimeout cannot be negative")
	}
	if o.Queue.RetryBackoff < 0 {
		return fmt.Errorf("queue.retryBackoff cannot be negative")
	}
	return nil
}

func (w *OverridesWatcher) logChanges(old, updated *Overrides) {
	changes := []string{}

	if old.Breaker.FailureThreshold != updated.Breaker.FailureThreshold {
		changes = append(changes, fmt.Sprintf("breaker.failureThreshold: %d -> %d",
			old.Breaker.FailureThreshold, updated.Breaker.FailureThreshold))
	}
	if old.Breaker.BreakDuration != updated.Breaker.BreakDuration {
		changes = append(changes, fmt.Sprintf("breaker.breakDuration: %s -> %s",
			old.Breaker.BreakDuration, updated.Breaker.BreakDuration))
	}
	if old.Queue.TaskTimeout != updated.Queue.TaskTimeout {
		changes = append(changes, fmt.Sprintf("queue.taskTimeout: %s -> %s",
			old.Queue.TaskTimeout, updated.Queue.TaskTimeout))
	}
	if old.Queue.RetryBackoff != updated.Queue.RetryBackoff {
		changes = append(changes, fmt.Sprintf("queue.retryBackoff: %s -> %s",
			old.Queue.RetryBackoff, updated.Queue.RetryBackoff))
	}

	if len(changes) > 0 {
		w.logger.Info("Override changes detected", zap.Strings("changes", changes))
	}
}

// OnChange registers a callback invoked after each successful reload
func (w *OverridesWatcher) OnChange(handler func(*Overrides)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// GetCurrent returns the most recently loaded overrides
func (w *OverridesWatcher) GetCurrent() *Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func loadOverridesFromFile(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var overrides Overrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides YAML: %w", err)
	}

	return &overrides, nil
}

// OverridesFromConfig seeds overrides from the static configuration
func OverridesFromConfig(cfg *Config) *Overrides {
	return &Overrides{
		Breaker: BreakerOverrides{
			FailureThreshold: cfg.BreakerFailureThreshold,
			BreakDuration:    cfg.BreakerBreakDuration,
		},
		Queue: QueueOverrides{
			TaskTimeout:  cfg.QueueTaskTimeout,
			RetryBackoff: cfg.QueueRetryBackoff,
		},
	}
}
