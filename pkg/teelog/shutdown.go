// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Helpers making sure a session is shut down on the way
// out of a program: panics, explicit exits and signals.

package teelog

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// osExit is swapped out by tests.
//
// nolint:gochecknoglobals // Why: test seam
var osExit = os.Exit

// Recover is meant to be deferred at the top of main, before
// Shutdown is deferred. A panic reaching it is printed with its stack
// trace through the intercepted stderr, so it lands in the log file
// too, and the process exits with code 2 like an unrecovered panic
// would.
func (s *Session) Recover() {
	if r := recover(); r != nil {
		//nolint:errcheck // Why: nowhere else to report to
		fmt.Fprintf(os.Stderr, "panic: %v\n\n%s", r, debug.Stack())

		// Go sets panic exit codes to 2
		s.Exit(2)
	}
}

// Exit shuts the session down, flushing everything written so far,
// then exits the process with code. Use it instead of os.Exit while a
// session is active.
func (s *Session) Exit(code int) {
	//nolint:errcheck // Why: exiting regardless
	s.Shutdown()
	osExit(code)
}

// ShutdownOnSignal shuts the session down when the process receives
// an interrupt, SIGTERM or SIGHUP, then re-raises the signal so the
// process terminates as it would have. Returns a function that stops
// watching.
func (s *Session) ShutdownOnSignal(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		defer signal.Stop(c)

		select {
		case <-ctx.Done():
			return
		case sig := <-c:
			//nolint:errcheck // Why: terminating regardless
			s.Shutdown()

			signal.Reset(sig)
			if p, err := os.FindProcess(os.Getpid()); err == nil && p.Signal(sig) == nil {
				return
			}
			osExit(1)
		}
	}()

	return cancel
}
