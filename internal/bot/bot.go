// Package bot implements the core bot functionality: message routing, the
// connection supervisor, scheduled tasks and lifecycle orchestration.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived component that stops when its context is canceled.
type Runner interface {
	Run(ctx context.Context) error
}

// Bot manages the lifecycle of the supervisor, the scheduler and the optional
// status server.
type Bot struct {
	logger     *slog.Logger
	supervisor Runner
	scheduler  *Scheduler
	status     Runner
}

// NewBot creates a new bot orchestrator. status may be nil.
func NewBot(logger *slog.Logger, supervisor Runner, scheduler *Scheduler, status Runner) *Bot {
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		supervisor: supervisor,
		scheduler:  scheduler,
		status:     status,
	}
}

// Run starts all components and blocks until ctx is canceled or one of them
// fails. The supervisor ending for any reason stops everything else.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := b.supervisor.Run(gCtx)
		if err == nil && gCtx.Err() == nil {
			return fmt.Errorf("supervisor stopped unexpectedly")
		}
		return err
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.status != nil {
		g.Go(func() error {
			return b.status.Run(gCtx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
