package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "BOT"

// Load loads and validates configuration from, in increasing precedence:
//  1. Default values
//  2. the YAML file at path (optional; a missing file is not an error)
//  3. a .env file in the working directory (optional)
//  4. BOT_* environment variables
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env file: %w", ErrConfiguration, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to read config file %s: %w", ErrConfiguration, path, err)
			}
			slog.Debug("Config file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks struct constraints and the rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if strings.IndexFunc(c.Bot.Prefix, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: bot.prefix must not contain whitespace", ErrValidation)
	}
	return nil
}
