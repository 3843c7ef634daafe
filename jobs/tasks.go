package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLookupsWarmup refills the dashboard lookup cache.
	TaskLookupsWarmup = "lookups:warmup"
	// TaskLookupsInvalidate drops every cached lookup.
	TaskLookupsInvalidate = "lookups:invalidate"
)

// WarmupPayload describes a lookup warmup run.
type WarmupPayload struct {
	// Invalidate bumps the cache version before reloading.
	Invalidate bool `json:"invalidate"`
}

// NewWarmupTask constructs a lookups warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLookupsWarmup, data), nil
}

// NewInvalidateTask constructs a cache invalidation task.
func NewInvalidateTask() *asynq.Task {
	return asynq.NewTask(TaskLookupsInvalidate, nil)
}
