package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// clientLogger routes the WhatsApp client library's printf-style logs into slog.
type clientLogger struct {
	log *slog.Logger
	min slog.Level
	off bool
}

// NewClientLogger adapts log to the whatsmeow logger interface. Records below
// levelStr are dropped; "none" silences the library entirely.
func NewClientLogger(log *slog.Logger, module, levelStr string) waLog.Logger {
	return &clientLogger{
		log: log.With("component", "whatsmeow", "module", module),
		min: ParseLevel(levelStr),
		off: levelStr == "none",
	}
}

func (l *clientLogger) emit(level slog.Level, msg string, args []any) {
	if l.off || level < l.min {
		return
	}
	l.log.Log(context.Background(), level, fmt.Sprintf(msg, args...))
}

func (l *clientLogger) Debugf(msg string, args ...any) { l.emit(slog.LevelDebug, msg, args) }
func (l *clientLogger) Infof(msg string, args ...any)  { l.emit(slog.LevelInfo, msg, args) }
func (l *clientLogger) Warnf(msg string, args ...any)  { l.emit(slog.LevelWarn, msg, args) }
func (l *clientLogger) Errorf(msg string, args ...any) { l.emit(slog.LevelError, msg, args) }

func (l *clientLogger) Sub(module string) waLog.Logger {
	return &clientLogger{
		log: l.log.With("submodule", module),
		min: l.min,
		off: l.off,
	}
}

// gocronLogger implements gocron.Logger on top of slog.
type gocronLogger struct {
	log *slog.Logger
}

// NewGocronLogger returns a logger that implements the gocron.Logger interface.
//
//nolint:ireturn // Interface return is required by gocron's API contract
func NewGocronLogger(log *slog.Logger) gocron.Logger {
	return &gocronLogger{log: log.With("component", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *gocronLogger) Error(msg string, args ...any) { l.log.Error(msg, args...) }
