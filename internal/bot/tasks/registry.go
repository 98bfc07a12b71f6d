package tasks

import (
	"context"
	"time"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the scheduled tasks keyed by the name used in the
// scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	tasks := map[string]ScheduledTaskFunc{
		"sql_maintenance":  newSQLMaintenanceTask(deps),
		"invocation_prune": newInvocationPruneTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
