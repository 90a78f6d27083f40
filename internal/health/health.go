// Package health reports liveness of the service's moving parts.
package health

import (
	"context"
	"time"

	"github.com/vidsage/vidsage/internal/cache"
)

// TaskRunner is the part of the task queue health cares about.
type TaskRunner interface {
	Running() bool
}

// Status is the health report returned by the health endpoint.
type Status struct {
	Status            string `json:"status"`
	CacheBackend      string `json:"cache_backend"`
	CacheAlive        bool   `json:"cache_alive"`
	TaskRunnerRunning bool   `json:"task_runner_running"`
}

// Checker aggregates component probes into a single status.
type Checker struct {
	cache   cache.Cache
	backend cache.Backend
	runner  TaskRunner
}

// NewChecker creates a health checker.
func NewChecker(c cache.Cache, backend cache.Backend, runner TaskRunner) *Checker {
	return &Checker{cache: c, backend: backend, runner: runner}
}

// Check probes each component. The overall status is "ok" only when
// every component is healthy; a degraded cache or stopped runner turns
// it to "degraded" without failing the endpoint.
func (c *Checker) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := Status{
		Status:       "ok",
		CacheBackend: string(c.backend),
		CacheAlive:   c.cache.Ping(ctx) == nil,
	}
	if c.runner != nil {
		status.TaskRunnerRunning = c.runner.Running()
	}

	if !status.CacheAlive || !status.TaskRunnerRunning {
		status.Status = "degraded"
	}
	return status
}
