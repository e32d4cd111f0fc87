// Package logging builds the file-backed zap loggers used by the decode
// binaries. The TUI owns the terminal, so nothing is written to stdout.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects where and how verbosely a binary logs.
type Config struct {
	// Name is the logger name and the default log file stem.
	Name string
	// Path is the log file. Empty uses DefaultPath(Name); "stderr" logs to stderr.
	Path string
	// Level is a zap level name such as "debug" or "warn". Empty means info.
	Level string
}

// DefaultPath returns ~/.local/state/decode/<name>.log.
func DefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "decode", name+".log")
	}
	return filepath.Join(home, ".local", "state", "decode", name+".log")
}

// New builds a JSON logger. The returned func flushes buffered entries and
// must be called before exit.
func New(cfg Config) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		level = lvl
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath(cfg.Name)
	}
	if path != "stderr" && path != "stdout" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("logging: build logger: %w", err)
	}
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}
	return logger, func() { _ = logger.Sync() }, nil
}
