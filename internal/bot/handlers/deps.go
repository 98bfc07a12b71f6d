// Package handlers contains the compiled command implementations that command
// manifests bind to by handler name.
package handlers

import (
	"time"

	"github.com/edgard/wabot/internal/database"
	"github.com/edgard/wabot/internal/gemini"
)

// HandlerDeps provides dependencies for command handlers.
type HandlerDeps struct {
	Store database.Store
	// GeminiClient is nil when no API key is configured.
	GeminiClient gemini.Client
	StartedAt    time.Time
}
