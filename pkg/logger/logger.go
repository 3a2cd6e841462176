// Package logger configures the global zerolog logger.
// The dashboard owns stdout, so log output goes to a rotated file unless a
// console writer is requested explicitly.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"stockdash/pkg/config"
)

// Options holds logger configuration
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // json, pretty
	Dir     string // empty disables the file sink
	Console io.Writer
	Service string
}

// FromConfig maps the application logging config onto Options.
func FromConfig(cfg config.LoggingConfig) Options {
	return Options{
		Level:   cfg.Level,
		Format:  cfg.Format,
		Dir:     cfg.Dir,
		Service: "stockdash",
	}
}

// Init initializes the global logger
func Init(opts Options) error {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer

	if opts.Console != nil {
		if opts.Format == "pretty" {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        opts.Console,
				TimeFormat: "15:04:05",
			})
		} else {
			writers = append(writers, opts.Console)
		}
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "stockdash.log"),
			MaxSize:    10, // MB
			MaxAge:     14, // days
			MaxBackups: 5,
			Compress:   true,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	service := opts.Service
	if service == "" {
		service = "stockdash"
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", service).
		Logger()

	log.Debug().
		Str("level", opts.Level).
		Str("format", opts.Format).
		Bool("file_enabled", opts.Dir != "").
		Msg("Logger initialized")

	return nil
}
