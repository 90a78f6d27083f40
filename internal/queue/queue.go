// Package queue implements the in-process background task runner.
// Tasks are fire-and-forget: callers enqueue and move on, they never
// observe task outcomes. Failed tasks are retried a bounded number of
// times with exponential backoff and then dropped.
package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vidsage/vidsage/pkg/observability"
)

// Handler processes one task. The payload is whatever the enqueuer
// supplied; handlers own their own payload validation.
type Handler func(ctx context.Context, payload map[string]interface{}) error

// Config configures the task runner.
type Config struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// DefaultConfig returns the standard runner settings. Each failed task
// is retried up to three times, waiting 60s, 120s, 240s between tries.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		QueueSize:      256,
		MaxRetries:     3,
		RetryBaseDelay: 60 * time.Second,
	}
}

type task struct {
	name    string
	payload map[string]interface{}
	attempt int
}

// Queue is a bounded in-process worker pool with named handlers.
type Queue struct {
	config   Config
	handlers map[string]Handler
	tasks    chan task
	logger   observability.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// New creates a Queue. Handlers must be registered before Start.
func New(config Config, logger observability.Logger) *Queue {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = 60 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		config:   config,
		handlers: make(map[string]Handler),
		tasks:    make(chan task, config.QueueSize),
		logger:   logger.WithPrefix("task-queue"),
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[*time.Timer]struct{}),
	}
}

// Register binds a handler to a task name. Registering after Start or
// re-registering a name is a programming error.
func (q *Queue) Register(name string, handler Handler) error {
	if q.running.Load() {
		return fmt.Errorf("cannot register handler %q on a running queue", name)
	}
	if _, exists := q.handlers[name]; exists {
		return fmt.Errorf("handler %q already registered", name)
	}
	q.handlers[name] = handler
	return nil
}

// Start launches the worker pool.
func (q *Queue) Start() {
	if !q.running.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("Task queue started", map[string]interface{}{
		"workers":    q.config.Workers,
		"queue_size": q.config.QueueSize,
	})
}

// Running reports whether the worker pool is live. Used by the health
// surface.
func (q *Queue) Running() bool {
	return q.running.Load()
}

// Enqueue submits a task by name. It never blocks: when the queue is
// full or stopped the task is dropped with a logged error.
func (q *Queue) Enqueue(name string, payload map[string]interface{}) {
	if !q.running.Load() {
		q.logger.Warn("Task dropped, queue not running", map[string]interface{}{"task": name})
		return
	}
	if _, ok := q.handlers[name]; !ok {
		q.logger.Error("Task dropped, no handler registered", map[string]interface{}{"task": name})
		return
	}
	q.submit(task{name: name, payload: payload})
}

func (q *Queue) submit(t task) {
	select {
	case q.tasks <- t:
	default:
		q.logger.Error("Task dropped, queue full", map[string]interface{}{
			"task":    t.name,
			"attempt": t.attempt,
		})
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case t := <-q.tasks:
			q.process(t)
		}
	}
}

func (q *Queue) process(t task) {
	handler := q.handlers[t.name]

	err := handler(q.ctx, t.payload)
	if err == nil {
		return
	}

	if t.attempt >= q.config.MaxRetries {
		q.logger.Error("Task dropped after retries exhausted", map[string]interface{}{
			"task":     t.name,
			"attempts": t.attempt + 1,
			"error":    err.Error(),
		})
		return
	}

	delay := q.config.RetryBaseDelay * time.Duration(1<<uint(t.attempt))
	q.logger.Warn("Task failed, scheduling retry", map[string]interface{}{
		"task":    t.name,
		"attempt": t.attempt + 1,
		"delay":   delay.String(),
		"error":   err.Error(),
	})

	retry := task{name: t.name, payload: t.payload, attempt: t.attempt + 1}

	q.mu.Lock()
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, timer)
		q.mu.Unlock()
		if q.running.Load() {
			q.submit(retry)
		}
	})
	q.timers[timer] = struct{}{}
	q.mu.Unlock()
}

// StartPeriodic enqueues the named task on a fixed interval until the
// queue shuts down. The hourly cache sweep runs through this.
func (q *Queue) StartPeriodic(name string, interval time.Duration, payload map[string]interface{}) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-q.ctx.Done():
				return
			case <-ticker.C:
				q.Enqueue(name, payload)
			}
		}
	}()
}

// Shutdown stops accepting work, cancels pending retries and waits for
// in-flight tasks up to the context deadline.
func (q *Queue) Shutdown(ctx context.Context) error {
	if !q.running.CompareAndSwap(true, false) {
		return nil
	}

	q.mu.Lock()
	for timer := range q.timers {
		timer.Stop()
	}
	q.timers = make(map[*time.Timer]struct{})
	q.mu.Unlock()

	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("Task queue stopped", nil)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task queue shutdown timed out: %w", ctx.Err())
	}
}
