// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Implements the public API for the olog package.

// Package olog builds the slog.Logger teelog uses to report problems
// with itself: a log directory that cannot be created, a file that
// cannot be swept, a session that is already installed.
//
// These diagnostics must never be written into the streams teelog is
// intercepting, so loggers are always bound to an explicit writer
// (normally the original stderr captured before interception).
package olog

import (
	"io"
	"log/slog"
)

// New creates a new slog instance that writes diagnostics to out. The
// handler is picked based on whether out is a terminal, see
// createHandler.
func New(out io.Writer) *slog.Logger {
	return NewWithHandler(createHandler(out, slog.LevelInfo))
}

// NewWithHandler returns a new slog.Logger with the provided handler.
//
// This is primarily meant to be used only by tests or other special
// cases.
func NewWithHandler(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}
