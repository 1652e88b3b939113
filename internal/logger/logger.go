// Package logger configures the process-wide slog logger with colorized
// terminal output.
package logger

import (
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
)

var (
	once   sync.Once
	logger = slog.New(slog.DiscardHandler)
)

// Options controls logger initialization.
type Options struct {
	Level      slog.Leveler // slog.LevelInfo, slog.LevelDebug, etc.
	Writer     *os.File     // default: os.Stderr
	TimeFormat string       // default: 15:04:05
}

// Init sets up the process logger. Later calls are no-ops.
func Init(opts *Options) {
	once.Do(func() {
		writer := opts.Writer
		if writer == nil {
			writer = os.Stderr
		}

		timeFormat := opts.TimeFormat
		if timeFormat == "" {
			timeFormat = "15:04:05"
		}

		handler := tint.NewHandler(writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: timeFormat,
		})

		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

// L returns the configured logger.
func L() *slog.Logger {
	return logger
}
