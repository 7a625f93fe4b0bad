package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Init installs the default slog logger. The returned closer is nil when no
// log file is configured.
func Init(cfg Config) io.Closer {
	logger, closer := New(cfg, os.Stdout)
	slog.SetDefault(logger)

	stdLogger := slog.NewLogLogger(logger.Handler(), parseLevel(cfg.Level))
	log.SetFlags(0)
	log.SetOutput(stdLogger.Writer())

	return closer
}

// New builds a text logger writing to out and, if configured, to a rotated file.
func New(cfg Config, out io.Writer) (*slog.Logger, io.Closer) {
	writers := []io.Writer{out}

	var rotating *lumberjack.Logger
	if strings.TrimSpace(cfg.File) != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		maxBackups := cfg.MaxBackups
		if maxBackups < 0 {
			maxBackups = 0
		}
		rotating = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		writers = append(writers, rotating)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	if rotating == nil {
		return slog.New(handler), nil
	}
	return slog.New(handler), rotating
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
