package config

import "time"

// Default values for configuration
const (
	DefaultBotName           = "WaBot"
	DefaultBotPrefix         = "!"
	DefaultCommandTimeout    = 30 * time.Second
	DefaultSessionDir        = "session"
	DefaultEventBuffer       = 64
	DefaultCommandsDir       = "commands"
	DefaultDBPath            = "storage.db"
	DefaultRetention         = 30 * 24 * time.Hour
	DefaultLogLevel          = "info"
	DefaultClientLogLevel    = "warn"
	DefaultReconnectAttempts = 10
	DefaultReconnectDelay    = 2 * time.Second
	DefaultReconnectMaxDelay = 2 * time.Minute
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 1.0
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 2 * time.Second
	DefaultBreakerFailures   = 5
	DefaultBreakerTimeout    = time.Minute
)

var defaults = map[string]any{
	"bot.name":            DefaultBotName,
	"bot.prefix":          DefaultBotPrefix,
	"bot.owner":           "",
	"bot.command_timeout": DefaultCommandTimeout,
	"bot.rate_limit":      0.0,
	"bot.rate_burst":      3,

	"bot.messages.command_error":  "❌ Something went wrong while running that command.",
	"bot.messages.not_authorized": "🚫 Only the bot owner can use this command.",
	"bot.messages.ai_unavailable": "🤖 AI answers are not configured on this bot.",
	"bot.messages.usage":          "ℹ️ Usage: {usage}",

	"session.dir":                  DefaultSessionDir,
	"session.fetch_latest_version": true,
	"session.event_buffer":         DefaultEventBuffer,

	"commands.dir": DefaultCommandsDir,

	"database.path":      DefaultDBPath,
	"database.retention": DefaultRetention,

	"logger.level":        DefaultLogLevel,
	"logger.json":         false,
	"logger.client_level": DefaultClientLogLevel,

	"reconnect.max_attempts":  DefaultReconnectAttempts,
	"reconnect.initial_delay": DefaultReconnectDelay,
	"reconnect.max_delay":     DefaultReconnectMaxDelay,

	"scheduler.tasks": map[string]any{
		"sql_maintenance":  map[string]any{"enabled": true, "schedule": "0 0 4 * * *"},
		"invocation_prune": map[string]any{"enabled": true, "schedule": "0 30 4 * * *"},
	},

	"http.addr": "",

	"gemini.api_key":            "",
	"gemini.model":              DefaultGeminiModel,
	"gemini.temperature":        DefaultGeminiTemperature,
	"gemini.system_instruction": "",
	"gemini.max_retries":        DefaultGeminiMaxRetries,
	"gemini.retry_delay":        DefaultGeminiRetryDelay,
	"gemini.breaker_failures":   DefaultBreakerFailures,
	"gemini.breaker_timeout":    DefaultBreakerTimeout,
}
