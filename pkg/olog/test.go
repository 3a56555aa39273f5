// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Provides helpers for interacting with the logger in
// tests.

package olog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// TestLogLine is a log line that was captured by a TestCapturer.
type TestLogLine struct {
	// Level is the log level of the log.
	Level slog.Level

	// Message is the message that was logged.
	Message string

	// Attrs is a map of attributes that were logged. This does not
	// include the time since it is not stable across runs.
	Attrs map[string]any
}

// TestCapturer parses the output of a JSON logger and stores it in a
// slice of TestLogLine.
type TestCapturer struct {
	logsMu sync.Mutex
	logs   []TestLogLine
}

// NewTestLogger returns a logger whose output is captured by the
// returned TestCapturer.
func NewTestLogger() (*slog.Logger, *TestCapturer) {
	tc := &TestCapturer{logs: make([]TestLogLine, 0)}
	return NewWithHandler(slog.NewJSONHandler(tc, &slog.HandlerOptions{Level: slog.LevelDebug})), tc
}

// GetLogs returns all of the logs that were emitted by the logger.
// This drains the logs slice.
func (t *TestCapturer) GetLogs() []TestLogLine {
	t.logsMu.Lock()
	defer t.logsMu.Unlock()

	// copy the logs slice so that we can drain it.
	out := make([]TestLogLine, len(t.logs))
	copy(out, t.logs)
	t.logs = make([]TestLogLine, 0)

	return out
}

// Messages returns the messages of the captured lines, draining them.
func (t *TestCapturer) Messages() []string {
	logs := t.GetLogs()
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Message)
	}
	return out
}

// Write implements io.Writer and parses the provided log line as a
// TestLogLine and stores it in the logs slice.
func (t *TestCapturer) Write(p []byte) (n int, err error) {
	var out map[string]any
	if err := json.Unmarshal(p, &out); err != nil {
		return 0, err
	}

	// turn into a TestLogLine
	ll := TestLogLine{Attrs: make(map[string]any)}
	for k, v := range out {
		switch k {
		case "level":
			if err := ll.Level.UnmarshalText([]byte(v.(string))); err != nil {
				return 0, fmt.Errorf("failed to parse log level: %w", err)
			}
		case "msg":
			ll.Message = v.(string)
		case "time": // Ignored fields.
		default:
			// everything else goes into attrs.
			ll.Attrs[k] = v
		}
	}

	t.logsMu.Lock()
	t.logs = append(t.logs, ll)
	t.logsMu.Unlock()

	return len(p), nil
}
