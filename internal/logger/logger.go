package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"mangasplit/internal/events"
)

// Options defines logger initialization parameters.
type Options struct {
	Level      string
	Pretty     bool
	Console    bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	global = zerolog.Nop()
	closer io.Closer
)

// Init sets up the global logger: optional rotated file, optional console on stderr.
// With neither enabled every entry is dropped.
func Init(opts Options) error {
	var writers []io.Writer

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		closer = lj
		writers = append(writers, lj)
	}

	if opts.Console {
		if opts.Pretty {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		} else {
			writers = append(writers, os.Stderr)
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	if len(writers) == 0 {
		global = zerolog.Nop()
	} else {
		global = zerolog.New(io.MultiWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	}
	log.Logger = global
	return nil
}

// Close flushes and closes the log file, if any.
func Close() {
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
}

// Get returns the global logger.
func Get() *zerolog.Logger { return &global }

// Sink persists pipeline events through l.
func Sink(l zerolog.Logger) events.Sink {
	return events.SinkFunc(func(e events.Event) {
		if e.Progress {
			l.Debug().Str("status", e.Status).Int("percent", e.Percent).Msg("progress")
			return
		}
		switch e.Level {
		case events.LevelWarn:
			l.Warn().Msg(e.Message)
		case events.LevelError:
			l.Error().Msg(e.Message)
		default:
			l.Info().Msg(e.Message)
		}
	})
}
