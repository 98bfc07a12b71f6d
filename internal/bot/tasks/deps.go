// Package tasks implements the bot's scheduled maintenance tasks.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/wabot/internal/config"
	"github.com/edgard/wabot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
	// Now defaults to time.Now.
	Now func() time.Time
}
