// Package logger holds the process-wide slog.Logger every package in this
// module logs through. A single global instance (rather than dependency
// injection through every constructor) keeps the core object-model and
// diff packages free of a logger parameter on every function, at the cost
// of the usual global-state caveats (spec.md §9 "Global state").
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	globalLogger *slog.Logger
	debugEnabled bool
	mu           sync.RWMutex
)

// SetGlobal installs logger as the process-wide logger and records whether
// debug-level logging is active. Called once from cmd/root.go after flags
// are parsed.
func SetGlobal(l *slog.Logger, debug bool) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
	debugEnabled = debug
}

// Get returns the global logger, falling back to a stderr text handler at
// info level if SetGlobal hasn't run yet (tests and library use import
// this package without going through the CLI entrypoint).
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if globalLogger != nil {
		return globalLogger
	}

	level := slog.LevelInfo
	if debugEnabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// IsDebug reports whether debug-level logging is active.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugEnabled
}
