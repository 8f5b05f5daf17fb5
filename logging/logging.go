// Package logging builds the zerolog logger of the client.
//
// The terminal belongs to the conversation, so logs go to a rotated file and
// reach the console only when asked for.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/stockchat/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a logger from cfg. Console output goes to stderr. Without a
// file and without console output the logger discards everything.
func New(cfg config.LoggingConfig) zerolog.Logger {
	return NewWithConsole(cfg, os.Stderr)
}

// NewWithConsole is New with an explicit console writer.
func NewWithConsole(cfg config.LoggingConfig, console io.Writer) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.TimeOnly,
		})
	}

	if cfg.File != "" {
		// Ensure log directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		return zerolog.Nop()
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel reads a level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
