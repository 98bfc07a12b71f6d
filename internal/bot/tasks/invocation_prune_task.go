package tasks

import (
	"context"
	"fmt"
)

// newInvocationPruneTask deletes invocation records older than the configured retention.
func newInvocationPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "invocation_prune")

	return func(ctx context.Context) error {
		retention := deps.Config.Database.Retention
		cutoff := deps.Now().Add(-retention)

		n, err := deps.Store.PruneInvocations(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("invocation prune failed: %w", err)
		}

		log.InfoContext(ctx, "Pruned old invocation records", "deleted", n, "retention", retention)
		return nil
	}
}
