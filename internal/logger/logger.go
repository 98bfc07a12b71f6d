// Package logger provides structured logging for the bot. It builds the slog
// logger and adapts it to the logging interfaces of the libraries the bot uses.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/edgard/wabot/internal/command"
)

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// CommandMiddleware logs every command invocation with its duration and outcome.
func CommandMiddleware(log *slog.Logger) command.Middleware {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, inv *command.Invocation) error {
			startTime := time.Now()

			logEntry := log.With(
				"command", inv.Command.Name,
				"chat", inv.Message.Chat,
				"sender", inv.Message.Sender,
				"message_id", inv.Message.ID,
				"args", len(inv.Args),
			)
			logEntry.InfoContext(ctx, "Processing command")

			err := next(ctx, inv)

			duration := time.Since(startTime)
			if err != nil {
				logEntry.ErrorContext(ctx, "Command execution error", "error", err, "duration", duration)
				return err
			}
			logEntry.InfoContext(ctx, "Finished processing command", "duration", duration)
			return nil
		}
	}
}

// Truncate shortens s to at most maxLen bytes for log previews and stored
// fields. It never splits a multi-byte rune.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
