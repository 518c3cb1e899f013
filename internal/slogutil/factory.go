package slogutil

import (
	"io"
	"log/slog"
	"os"

	"swagfill/internal/config"
	"swagfill/internal/paths"
)

// LoggerFactory builds the run logger from configuration and CLI overrides.
// Precedence: CLI flags > config > default (warn on stderr).
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel *slog.Level
	stderr   io.Writer
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory. cliLevel is nil when no
// verbosity flag was given.
func NewLoggerFactory(repoRoot string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
		cliLevel: cliLevel,
		stderr:   os.Stderr,
	}
}

// RunLogger returns a logger writing to stderr and, when logging.file is
// enabled, appending to .swagfill/logs/swagfill.log as well. A log file that
// cannot be opened degrades to stderr only.
func (f *LoggerFactory) RunLogger() *slog.Logger {
	level := f.effectiveLevel()
	console := NewHandler(f.stderr, &slog.HandlerOptions{Level: level}).WithoutTime().WithRepoRoot(f.repoRoot)

	if !f.config.Logging.File || f.repoRoot == "" {
		return slog.New(console)
	}

	file, err := openLogFile(paths.LogPath(f.repoRoot), parseSize(f.config.Logging.MaxSize), f.config.Logging.MaxBackups)
	if err != nil {
		return slog.New(console)
	}
	f.closers = append(f.closers, file)

	// The file always records at least info so runs leave a trail.
	fileOpts := &slog.HandlerOptions{Level: min(level, slog.LevelInfo)}
	var fileHandler slog.Handler
	if f.config.Logging.Format == "json" {
		fileHandler = slog.NewJSONHandler(file, fileOpts)
	} else {
		fileHandler = NewHandler(file, fileOpts).WithRepoRoot(f.repoRoot)
	}
	return slog.New(Tee(console, fileHandler))
}

func (f *LoggerFactory) effectiveLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelWarn
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
