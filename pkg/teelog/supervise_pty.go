// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Running a supervised child on a pty.

//go:build !windows

package teelog

import (
	"context"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// runPTY runs cmd attached to a pty whose output is teed into tee,
// forwarding stdin and window size changes. It returns the error of
// cmd.Wait separately from errors setting the pty up.
func runPTY(ctx context.Context, cmd *exec.Cmd, tee *teeStream) (waitErr, err error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start pty")
	}

	// Set stdin in raw mode.
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		//nolint:errcheck // Why: Best effort
		cmd.Process.Kill()
		//nolint:errcheck // Why: reaping the child we just killed
		cmd.Wait()
		ptmx.Close()
		return nil, errors.Wrap(err, "failed to put stdin into raw mode")
	}

	// forward os.Stdin to the PTY
	//nolint:errcheck // Why: Best effort
	go io.Copy(ptmx, os.Stdin)

	exited := make(chan struct{})
	go func() {
		//nolint:errcheck // Why: the pty returns EIO once the child is gone
		io.Copy(tee, ptmx)
		tee.flush()
		//nolint:errcheck // Why: Best effort
		term.Restore(int(os.Stdin.Fd()), oldState)
		close(exited)
	}()

	forwardPTYSignals(ctx, exited, ptmx, cmd)

	waitErr = cmd.Wait()

	// Let the copier drain the pty before closing it, then wait for the
	// logs to flush
	//nolint:errcheck // Why: the child is gone, nothing to recover
	drainThenClose(exited, ptmx, ptyDrainTimeout)
	<-exited

	return waitErr, nil
}

// forwardPTYSignals forwards signals to the child and handles SIGWINCH
// to resize the pty.
func forwardPTYSignals(ctx context.Context, exited <-chan struct{}, ptmx *os.File, cmd *exec.Cmd) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(c)
		for {
			select {
			case <-exited:
				return
			case <-ctx.Done():
				//nolint:errcheck // Why: Best effort
				cmd.Process.Kill()
				return
			case s := <-c:
				switch s {
				case syscall.SIGWINCH:
					//nolint:errcheck // Why: Best effort
					pty.InheritSize(os.Stdin, ptmx)
				default:
					//nolint:errcheck // Why: Best effort
					cmd.Process.Signal(s)
				}
			}
		}
	}()

	// Initial resize of the PTY
	c <- syscall.SIGWINCH
}
