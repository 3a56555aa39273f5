// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Functional options shared by sessions, sweeps and
// supervised runs.

package teelog

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// Option configures a Session, a Sweep or a supervised run.
type Option func(*options)

type options struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *Metrics
}

// WithClock sets the clock used for timestamps and rotation. Meant
// for tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger diagnostics are reported to. It must not
// write to os.Stdout or os.Stderr. By default diagnostics go to the
// stderr captured before interception.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, f := range opts {
		f(o)
	}
	return o
}
