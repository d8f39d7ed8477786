// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package logging provides structured debug logging for recipechat.
//
// The TUI owns stdout, so logs go to a file (~/.recipechat/debug.log by
// default). Logging is disabled until Setup is called; all packages log
// through L() so a test or library consumer never writes to disk by accident.
package logging

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// Setup opens the log file and enables logging at the given level.
// Passing an empty path selects ~/.recipechat/debug.log.
func Setup(path string, debug bool) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".recipechat", "debug.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	mu.Lock()
	logger = zerolog.New(f).Level(level).With().Timestamp().Logger()
	mu.Unlock()
	return nil
}

// SetOutput replaces the logger wholesale. Tests use this to capture output.
func SetOutput(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Disable silences all logging.
func Disable() {
	SetOutput(zerolog.Nop())
}

// L returns the shared logger. Callers get a pointer to a private copy, so
// the lock is released before any level method runs.
func L() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return &l
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
