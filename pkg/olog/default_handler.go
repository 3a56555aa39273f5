// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Contains logic for determining which handler should be
// used for a given output.

package olog

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"

	"golang.org/x/term"
)

// HandlerType denotes which handler backs a logger.
type HandlerType int

const (
	// TextHandler is slog's logfmt-style handler, used when the output
	// is a pipe or a file.
	TextHandler HandlerType = iota

	// CharmHandler is the charmbracelet/log handler, used when the
	// output is a terminal.
	CharmHandler
)

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// handlerTypeFor returns CharmHandler when out is a terminal.
func handlerTypeFor(out io.Writer) HandlerType {
	if f, ok := out.(fder); ok && term.IsTerminal(int(f.Fd())) {
		return CharmHandler
	}
	return TextHandler
}

// createHandler creates a new handler for usage with a slog.Logger.
func createHandler(out io.Writer, level slog.Level) slog.Handler {
	switch handlerTypeFor(out) {
	case CharmHandler:
		var charmLogLevel charmlog.Level
		switch level {
		case slog.LevelDebug:
			charmLogLevel = charmlog.DebugLevel
		case slog.LevelInfo:
			charmLogLevel = charmlog.InfoLevel
		case slog.LevelWarn:
			charmLogLevel = charmlog.WarnLevel
		case slog.LevelError:
			charmLogLevel = charmlog.ErrorLevel
		default:
			panic("unknown slog level")
		}

		return charmlog.NewWithOptions(out, charmlog.Options{
			Prefix:          "teelog",
			ReportTimestamp: true,
			Level:           charmLogLevel,
		})
	default:
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
}
