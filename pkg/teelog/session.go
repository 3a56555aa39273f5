// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Session lifecycle: installing and restoring the
// intercepted stdout and stderr.

package teelog

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/getoutreach/teelog/pkg/olog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSessionClosed is returned by Setup on a session that was shut
// down. Sessions cannot be reused.
var ErrSessionClosed = errors.New("teelog session is closed")

// State is the lifecycle state of a Session.
type State int

const (
	// StateIdle is a session that was created but not set up.
	StateIdle State = iota

	// StateActive is a session whose streams are installed.
	StateActive

	// StateClosed is a session that was shut down.
	StateClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// active is the session whose streams are currently installed. Only
// one session may intercept the process at a time.
//
// nolint:gochecknoglobals // Why: os.Stdout and os.Stderr are process wide
var (
	activeMu sync.Mutex
	active   *Session
)

// Session tees the process's stdout and stderr into daily log files
// between Setup and Shutdown.
type Session struct {
	id    string
	cc    *compiledConfig
	clock clockSource
	opts  *options

	mu    sync.Mutex
	state State

	log    *slog.Logger
	sink   *fileSink
	stdout *interceptor
	stderr *interceptor

	// logOut is the standard library logger's output before Setup,
	// set only when it was redirected.
	logOut io.Writer
}

// New validates cfg and returns an idle session. Configuration errors
// wrap ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Session, error) {
	cc, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	return &Session{
		id:    uuid.NewString(),
		cc:    cc,
		clock: newClockSource(o.clock, cc.Timezone),
		opts:  o,
		state: StateIdle,
	}, nil
}

// ID returns the unique id of the session, attached to its
// diagnostics.
func (s *Session) ID() string {
	return s.id
}

// State returns the lifecycle state of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LogPath returns the path of the log file currently open, or "" when
// there is none.
func (s *Session) LogPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.currentPath()
}

// Setup starts intercepting. It sweeps expired log files, replaces
// os.Stdout and os.Stderr (and the standard library logger's output
// when it points at stderr) and writes the initiation banner.
//
// Calling Setup on an active session does nothing. When another
// session is already active, Setup reports it and does nothing.
func (s *Session) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		return nil
	case StateClosed:
		return ErrSessionClosed
	}

	origOut, origErr := os.Stdout, os.Stderr

	s.log = s.opts.logger
	if s.log == nil {
		s.log = olog.New(origErr)
	}
	s.log = s.log.With("session", s.id)

	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		s.log.Warn("logging is already set up", "active_session", active.id)
		return nil
	}

	var outConsole, errConsole io.Writer
	if s.cc.ConsoleOutput {
		outConsole, errConsole = origOut, origErr
	}

	s.sink = newFileSink(s.cc, s.clock, s.log, s.opts.metrics, outConsole)
	if s.sink != nil {
		s.sink.crashOutput = true

		if s.cc.CleanupOnStartup {
			sweep(s.cc, s.clock.Now(), s.log, s.opts.metrics)
		}
	}

	stdout, err := newInterceptor(origOut,
		newTeeStream("stdout", outConsole, newLineFormatter(s.cc, s.clock), s.sink, s.opts.metrics))
	if err != nil {
		return errors.Wrap(err, "failed to intercept stdout")
	}

	stderr, err := newInterceptor(origErr,
		newTeeStream("stderr", errConsole, newLineFormatter(s.cc, s.clock), s.sink, s.opts.metrics))
	if err != nil {
		stdout.stop()
		return errors.Wrap(err, "failed to intercept stderr")
	}

	s.stdout, s.stderr = stdout, stderr
	os.Stdout, os.Stderr = stdout.w, stderr.w
	// the log package writes to the tee directly so log.Fatal output
	// is on the console and in the file before the process exits
	if log.Writer() == io.Writer(origErr) {
		s.logOut = origErr
		log.SetOutput(stderr.tee)
	}

	if s.sink != nil {
		s.sink.open()
	} else if outConsole != nil {
		for _, line := range banner(s.clock.Now(), s.cc.LogsDir) {
			//nolint:errcheck // Why: console output is best effort
			fmt.Fprintln(outConsole, line)
		}
	}

	s.state = StateActive
	active = s
	return nil
}

// Shutdown stops intercepting: it restores the original streams,
// waits for everything already written to be logged, writes a pending
// partial line as a final entry and closes the log file.
//
// Calling Shutdown on an idle or closed session does nothing.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return nil
	}

	s.restore()

	s.stdout.stop()
	s.stderr.stop()

	err := s.sink.close()
	if err != nil {
		s.log.Warn("failed to close log file", "error", err)
	}

	s.state = StateClosed

	activeMu.Lock()
	if active == s {
		active = nil
	}
	activeMu.Unlock()

	return err
}

// Sync flushes the original console files and the log file. Partial
// lines stay buffered.
func (s *Session) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return nil
	}

	//nolint:errcheck // Why: the file sync below is the one that matters
	s.stdout.tee.sync()
	return s.stderr.tee.sync()
}

// restore puts back the streams replaced by Setup. A stream is only
// restored while it still holds the session's pipe, so a wrapper
// installed on top of the session is not clobbered.
func (s *Session) restore() {
	if os.Stdout == s.stdout.w {
		os.Stdout = s.stdout.orig
	} else {
		s.log.Warn("os.Stdout was replaced after setup, leaving it in place")
	}

	if os.Stderr == s.stderr.w {
		os.Stderr = s.stderr.orig
	} else {
		s.log.Warn("os.Stderr was replaced after setup, leaving it in place")
	}

	if s.logOut != nil && log.Writer() == io.Writer(s.stderr.tee) {
		log.SetOutput(s.logOut)
	}
}
