// Package config loads the stockchat configuration.
//
// Values are applied with priority: defaults -> TOML file -> .env file ->
// STOCKCHAT_* environment variables -> command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STOCKCHAT_"

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Display DisplayConfig `toml:"display"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig locates the chat backend.
type ServerConfig struct {
	URL           string `toml:"url"`
	PortfolioPath string `toml:"portfolio_path"`
	SavePath      string `toml:"save_path"`
	ChatPath      string `toml:"chat_path"`
	// ChatTimeout is a duration like "90s". Empty means no client side
	// timeout.
	ChatTimeout string `toml:"chat_timeout"`
}

// DisplayConfig contains terminal rendering settings.
type DisplayConfig struct {
	Style    string `toml:"style"` // glamour style, empty for automatic
	WordWrap int    `toml:"word_wrap"`
	Currency string `toml:"currency"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`     // empty disables the log file
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Console    bool   `toml:"console"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:           "http://localhost:5001",
			PortfolioPath: "/get_portfolio",
			SavePath:      "/set_portfolio",
			ChatPath:      "/chat",
		},
		Display: DisplayConfig{
			WordWrap: 100,
			Currency: "USD",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ChatTimeout parses Server.ChatTimeout.
func (c *Config) ChatTimeout() (time.Duration, error) {
	if c.Server.ChatTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.ChatTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid chat timeout %q: %w", c.Server.ChatTimeout, err)
	}
	return d, nil
}

// Validate checks the values that cannot be fixed later.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		return fmt.Errorf("server url %q must start with http:// or https://", c.Server.URL)
	}
	if _, err := c.ChatTimeout(); err != nil {
		return err
	}
	if c.Display.WordWrap < 0 {
		return fmt.Errorf("word wrap must not be negative, got %d", c.Display.WordWrap)
	}
	return nil
}

// Load reads the configuration. path is an optional TOML file, envFile an
// optional .env file: missing files are skipped. getenv reads the process
// environment, usually os.Getenv.
func Load(path, envFile string, getenv func(string) string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		default:
			dotenv = m
		}
	}
	// the process environment wins over the .env file.
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := applyEnvOverrides(config, lookup); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies STOCKCHAT_* environment variable overrides to config.
func applyEnvOverrides(config *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v := getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("SERVER_URL", &config.Server.URL)
	str("CHAT_TIMEOUT", &config.Server.ChatTimeout)
	str("STYLE", &config.Display.Style)
	str("CURRENCY", &config.Display.Currency)
	str("LOG_LEVEL", &config.Logging.Level)
	str("LOG_FILE", &config.Logging.File)
	if err := integer("WORD_WRAP", &config.Display.WordWrap); err != nil {
		return err
	}
	if v := getenv(EnvPrefix + "VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sVERBOSE: %w", EnvPrefix, err)
		}
		config.Logging.Console = b
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides to config. Zero
// values are ignored.
func ApplyFlagOverrides(config *Config, server string, verbose bool) {
	if server != "" {
		config.Server.URL = server
	}
	if verbose {
		config.Logging.Console = true
		config.Logging.Level = "debug"
	}
}
