// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures structured logging for ccswitch.
//
// All diagnostic events are zerolog events with structured fields, written
// to stderr through a console writer (colored when stderr is a terminal)
// and optionally mirrored to a log file. Components obtain named
// sub-loggers via For, so every event carries a "component" field.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Setup initializes the global logger. level is one of "debug", "info",
// "warn", "error" (unknown values fall back to info). If logFile is
// non-empty, events are also appended there in JSON form for later
// inspection; a failure to open the file is non-fatal and logging
// continues on stderr only.
func Setup(level string, logFile string) error {
	zerolog.TimeFieldFormat = time.RFC3339

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    !stderrIsTerminal() || os.Getenv("NO_COLOR") != "",
	}

	var writer io.Writer = consoleWriter

	var fileErr error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
			f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				writer = zerolog.MultiLevelWriter(consoleWriter, f)
			} else {
				fileErr = err
			}
		} else {
			fileErr = err
		}
	}

	log.Logger = zerolog.New(writer).Level(parseLevel(level)).With().Timestamp().Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("log file unavailable, logging to stderr only")
	}
	return nil
}

// For returns a component-scoped logger. Events carry a "component" field
// so log output can be filtered per subsystem (store, configfile, cli...).
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
