// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import "time"

// Config defines the application configuration. Values can be set via environment
// variables prefixed with BOT_ (e.g., BOT_GEMINI_API_KEY), a .env file, or config.yaml.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Session   SessionConfig   `mapstructure:"session"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Reconnect ReconnectConfig `mapstructure:"reconnect"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

// BotConfig holds the settings handed to every command invocation.
type BotConfig struct {
	Name   string `mapstructure:"name"   validate:"required"`
	Prefix string `mapstructure:"prefix" validate:"required,max=8"`
	// Owner is the phone number (JID user part) allowed to run owner-only commands.
	Owner          string        `mapstructure:"owner"           validate:"omitempty,numeric"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" validate:"min=1s,max=10m"`
	// RateLimit is the sustained number of commands per second accepted from one sender. Zero disables limiting.
	RateLimit float64        `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int            `mapstructure:"rate_burst" validate:"min=0"`
	Messages  MessagesConfig `mapstructure:"messages"`
}

// MessagesConfig holds user-facing texts. An empty text disables that reply.
type MessagesConfig struct {
	CommandError  string `mapstructure:"command_error"`
	NotAuthorized string `mapstructure:"not_authorized"`
	AIUnavailable string `mapstructure:"ai_unavailable"`
	Usage         string `mapstructure:"usage"`
}

type SessionConfig struct {
	// Dir holds the persisted device credentials.
	Dir                string `mapstructure:"dir"                  validate:"required"`
	FetchLatestVersion bool   `mapstructure:"fetch_latest_version"`
	// EventBuffer is the capacity of the per-session event queue.
	EventBuffer int `mapstructure:"event_buffer" validate:"min=1"`
}

type CommandsConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// Retention is how long invocation records are kept before pruning.
	Retention time.Duration `mapstructure:"retention" validate:"min=1h"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	// ClientLevel filters the protocol library's own log output.
	ClientLevel string `mapstructure:"client_level" validate:"oneof=debug info warn error none"`
}

// ReconnectConfig bounds session establishment retries.
type ReconnectConfig struct {
	// MaxAttempts is the number of consecutive failed startups tolerated. Zero retries forever.
	MaxAttempts  uint          `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"min=1ms"`
	MaxDelay     time.Duration `mapstructure:"max_delay"     validate:"gtefield=InitialDelay"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// HTTPConfig configures the status endpoint. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"              validate:"required"`
	Temperature       float32       `mapstructure:"temperature"        validate:"min=0,max=2"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	MaxRetries        int           `mapstructure:"max_retries"        validate:"min=0,max=10"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	// BreakerFailures consecutive failed calls stop further calls for BreakerTimeout.
	BreakerFailures uint32        `mapstructure:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"  validate:"min=1s"`
}

// Enabled reports whether an API key was configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}
