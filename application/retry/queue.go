// Package retry provides the gateway's asynchronous retry queue: at-least-once
// eventual execution of downstream side effects that failed on their first,
// request-time attempt.
package retry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueueConfig holds retry queue tuning
type QueueConfig struct {
	// TaskTimeout bounds a task's whole life including retries; a task
	// still failing when it elapses is dropped.
	TaskTimeout time.Duration
	// AttemptTimeout bounds every single execution attempt.
	AttemptTimeout time.Duration
	// RetryBackoff is the fixed wait between failed attempts.
	RetryBackoff time.Duration
	// DrainGrace is how long Stop waits for the backlog to drain.
	DrainGrace time.Duration
}

// DefaultQueueConfig returns the default queue tuning
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		TaskTimeout:    10 * time.Second,
		AttemptTimeout: 10 * time.Second,
		RetryBackoff:   2 * time.Second,
		DrainGrace:     5 * time.Second,
	}
}

// Metrics receives queue lifecycle events. Implemented by the observability
// collector; NopMetrics is used when metrics are disabled.
type Metrics interface {
	TaskEnqueued(kind string)
	TaskSucceeded(kind string)
	TaskDropped(kind string)
	QueueDepth(depth int)
}

// NopMetrics discards all queue events
type NopMetrics struct{}

func (NopMetrics) TaskEnqueued(string)  {}
func (NopMetrics) TaskSucceeded(string) {}
func (NopMetrics) TaskDropped(string)   {}
func (NopMetrics) QueueDepth(int)       {}

// Task is one queued unit of deferred work
type Task struct {
	ID         uuid.UUID
	Op         Operation
	CreatedAt  time.Time
	RetryCount int
	Timeout    time.Duration
}

// Queue executes deferred side effects with bounded retries. Producers never
// block: the backlog is unbounded, which deliberately trades memory growth
// under sustained downstream failure for never stalling foreground requests.
// A single worker consumes tasks in submission order, one at a time, to
// bound the load replayed onto an already struggling service.
type Queue struct {
	configMu sync.RWMutex
	config   QueueConfig

	executor Executor
	logger   *zap.Logger
	metrics  Metrics

	mu      sync.Mutex
	backlog []*Task

	signal      chan struct{}
	stopChan    chan struct{}
	stoppedChan chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
	started     atomic.Bool

	// now is injectable for tests
	now func() time.Time
}

// NewQueue creates a retry queue. The executor performs the actual
// downstream calls for queued operations.
func NewQueue(config QueueConfig, executor Executor, logger *zap.Logger, metrics Metrics) *Queue {
	def := DefaultQueueConfig()
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = def.TaskTimeout
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = def.AttemptTimeout
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = def.RetryBackoff
	}
	if config.DrainGrace <= 0 {
		config.DrainGrace = def.DrainGrace
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Queue{
		config:      config,
		executor:    executor,
		logger:      logger,
		metrics:     metrics,
		signal:      make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
		now:         time.Now,
	}
}

// UpdateConfig swaps the queue tuning at runtime. Non-positive fields keep
// their current values. Already-queued tasks keep the timeout they were
// enqueued with.
func (q *Queue) UpdateConfig(config QueueConfig) {
	q.configMu.Lock()
	defer q.configMu.Unlock()
	if config.TaskTimeout > 0 {
		q.config.TaskTimeout = config.TaskTimeout
	}
	if config.AttemptTimeout > 0 {
		q.config.AttemptTimeout = config.AttemptTimeout
	}
	if config.RetryBackoff > 0 {
		q.config.RetryBackoff = config.RetryBackoff
	}
	if config.DrainGrace > 0 {
		q.config.DrainGrace = config.DrainGrace
	}
}

func (q *Queue) tuning() QueueConfig {
	q.configMu.RLock()
	defer q.configMu.RUnlock()
	return q.config
}

// Enqueue schedules an operation for asynchronous execution and returns its
// task id immediately. A non-positive timeout falls back to the configured
// task timeout. Safe for concurrent use; never blocks.
func (q *Queue) Enqueue(op Operation, timeout time.Duration) uuid.UUID {
	if timeout <= 0 {
		timeout = q.tuning().TaskTimeout
	}

	task := &Task{
		ID:        uuid.New(),
		Op:        op,
		CreatedAt: q.now(),
		Timeout:   timeout,
	}

	q.mu.Lock()
	q.backlog = append(q.backlog, task)
	depth := len(q.backlog)
	q.mu.Unlock()

	q.metrics.TaskEnqueued(op.Kind())
	q.metrics.QueueDepth(depth)
	q.logger.Info("queued deferred operation",
		zap.String("task_id", task.ID.String()),
		zap.String("operation", Describe(op)),
		zap.Duration("timeout", timeout),
	)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return task.ID
}

// Depth returns the number of tasks waiting in the backlog
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Start launches the background worker. The worker stops when ctx is
// cancelled or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		cfg := q.tuning()
		q.logger.Info("starting retry queue worker",
			zap.Duration("task_timeout", cfg.TaskTimeout),
			zap.Duration("retry_backoff", cfg.RetryBackoff),
		)
		q.started.Store(true)
		go q.workerLoop(ctx)
	})
}

// Running reports whether the background worker is alive
func (q *Queue) Running() bool {
	if !q.started.Load() {
		return false
	}
	select {
	case <-q.stoppedChan:
		return false
	default:
		return true
	}
}

// Stop shuts the worker down, allowing already-queued tasks the configured
// drain grace before giving up. The worker keeps executing the backlog until
// it is empty or the grace elapses; tasks still queued after that are lost
// and logged as such.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopChan)
		select {
		case <-q.stoppedChan:
		case <-time.After(q.tuning().DrainGrace):
		}

		q.mu.Lock()
		lost := len(q.backlog)
		tasks := q.backlog
		q.backlog = nil
		q.mu.Unlock()

		for _, task := range tasks {
			q.abandon(task)
		}
		q.metrics.QueueDepth(0)
		q.logger.Info("retry queue stopped", zap.Int("lost_tasks", lost))
	})
}

func (q *Queue) workerLoop(ctx context.Context) {
	defer close(q.stoppedChan)

	for {
		task := q.pop()
		if task == nil {
			select {
			case <-ctx.Done():
				return
			case <-q.stopChan:
				q.drain(ctx)
				return
			case <-q.signal:
				continue
			}
		}

		q.runTask(ctx, task)

		// Switch to draining between tasks if shutdown started; whatever
		// the drain cannot finish is reported by Stop.
		select {
		case <-q.stopChan:
			q.drain(ctx)
			return
		case <-ctx.Done():
			return
		default:
		}
	}
}

// drain keeps executing the remaining backlog after shutdown starts, until
// it is empty or the drain grace elapses. Attempts are bounded by the grace
// deadline, and a task failing during drain is abandoned instead of backed
// off: its backoff wait hits the closed stop channel immediately.
func (q *Queue) drain(ctx context.Context) {
	deadline := q.now().Add(q.tuning().DrainGrace)
	drainCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for q.now().Before(deadline) {
		task := q.pop()
		if task == nil {
			return
		}
		q.runTask(drainCtx, task)
	}
}

func (q *Queue) pop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) == 0 {
		return nil
	}
	task := q.backlog[0]
	q.backlog = q.backlog[1:]
	q.metrics.QueueDepth(len(q.backlog))
	return task
}

func (q *Queue) abandon(task *Task) {
	q.metrics.TaskDropped(task.Op.Kind())
	q.logger.Error("deferred operation lost at shutdown",
		zap.String("task_id", task.ID.String()),
		zap.String("operation", Describe(task.Op)),
		zap.Int("retry_count", task.RetryCount),
	)
}

// runTask executes a task until it succeeds, its timeout window closes, or
// shutdown begins.
func (q *Queue) runTask(ctx context.Context, task *Task) {
	deadline := task.CreatedAt.Add(task.Timeout)

	for {
		cfg := q.tuning()
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.AttemptTimeout)
		err := task.Op.Run(attemptCtx, q.executor)
		cancel()

		if err == nil {
			q.metrics.TaskSucceeded(task.Op.Kind())
			q.logger.Info("deferred operation succeeded",
				zap.String("task_id", task.ID.String()),
				zap.String("kind", task.Op.Kind()),
				zap.Int("retry_count", task.RetryCount),
			)
			return
		}

		task.RetryCount++
		if !q.now().Add(cfg.RetryBackoff).Before(deadline) {
			q.metrics.TaskDropped(task.Op.Kind())
			q.logger.Error("deferred operation dropped after timeout",
				zap.String("task_id", task.ID.String()),
				zap.String("operation", Describe(task.Op)),
				zap.Int("retry_count", task.RetryCount),
				zap.Error(err),
			)
			return
		}

		q.logger.Warn("deferred operation failed, backing off",
			zap.String("task_id", task.ID.String()),
			zap.String("kind", task.Op.Kind()),
			zap.Int("retry_count", task.RetryCount),
			zap.Error(err),
		)

		select {
		case <-time.After(cfg.RetryBackoff):
		case <-q.stopChan:
			q.abandon(task)
			return
		case <-ctx.Done():
			q.abandon(task)
			return
		}
	}
}
