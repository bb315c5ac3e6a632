package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configures the process-wide logger.
type LogOptions struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is "console" or "json".
	Format string
	// File, when set, sends output to a size-rotated file instead of stderr.
	File string
}

// SetupLogger configures the default slog logger. It is called once from the
// CLI layer before any component starts.
func SetupLogger(opts LogOptions) error {
	var level slog.Level
	switch opts.Level {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("%w: invalid log level %q", ErrInvalidConfig, opts.Level)
	}

	var out io.Writer = os.Stderr
	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.Format {
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	case "console", "":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		return fmt.Errorf("%w: invalid log format %q", ErrInvalidConfig, opts.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
