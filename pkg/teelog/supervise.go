// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Recording the output of a child process, including the
// current process re-ran as its own child.

package teelog

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/getoutreach/teelog/pkg/olog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// SupervisedEnvironmentVariable is set in the environment of a
// process re-ran by Hook, so that it does not hook itself again.
const SupervisedEnvironmentVariable = "TEELOG_SUPERVISED"

// ptyDrainTimeout bounds how long a pty is read after the child
// exited before it is closed. Reads normally end sooner with EIO.
const ptyDrainTimeout = 2 * time.Second

// errPTYUnsupported is returned by runPTY on platforms without ptys.
var errPTYUnsupported = errors.New("pty is not supported on this platform")

// Hook re-runs the current process as a child whose output is teed
// into the log files, then exits with the child's exit code. Inside
// the child Hook returns nil straight away, so it is meant to be
// called first thing in main:
//
//	if err := teelog.Hook(teelog.DefaultConfig(time.Local)); err != nil {
//	    return err
//	}
//
// Unlike a Session this captures everything the program prints even
// if it crashes or calls os.Exit.
func Hook(cfg Config, opts ...Option) error {
	if _, ok := os.LookupEnv(SupervisedEnvironmentVariable); ok {
		// We're already being recorded, so don't do anything.
		return nil
	}

	//nolint:gosec // Why: We're using the same command that was run to start the process
	cmd := exec.Command(os.Args[0], os.Args[1:]...)

	code, err := Supervise(context.Background(), cfg, cmd, opts...)
	if err != nil {
		return err
	}

	osExit(code)
	return nil
}

// Supervise runs cmd, teeing its stdout and stderr to the console and
// the log files, and returns its exit code. cmd must not have been
// started and must not have Stdout or Stderr set.
//
// When stdin is a terminal the child runs on a pty, so it still sees
// a terminal, and its stdout and stderr arrive as a single stream.
// Otherwise both are separate pipes with their own line buffers.
// Cancelling ctx kills the child.
func Supervise(ctx context.Context, cfg Config, cmd *exec.Cmd, opts ...Option) (int, error) {
	cc, err := cfg.compile()
	if err != nil {
		return -1, err
	}

	o := newOptions(opts)
	log := o.logger
	if log == nil {
		log = olog.New(os.Stderr)
	}
	clock := newClockSource(o.clock, cc.Timezone)

	var outConsole, errConsole io.Writer
	if cc.ConsoleOutput {
		outConsole, errConsole = os.Stdout, os.Stderr
	}

	sink := newFileSink(cc, clock, log, o.metrics, outConsole)
	if sink != nil && cc.CleanupOnStartup {
		sweep(cc, clock.Now(), log, o.metrics)
	}
	sink.open()
	defer func() {
		if err := sink.close(); err != nil {
			log.Warn("failed to close log file", "error", err)
		}
	}()

	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, fmt.Sprintf("%s=1", SupervisedEnvironmentVariable))

	newTee := func(name string, console io.Writer) *teeStream {
		return newTeeStream(name, console, newLineFormatter(cc, clock), sink, o.metrics)
	}

	var waitErr error
	if term.IsTerminal(int(os.Stdin.Fd())) {
		waitErr, err = runPTY(ctx, cmd, newTee("pty", outConsole))
		if errors.Is(err, errPTYUnsupported) {
			waitErr, err = runPipes(ctx, cmd, newTee("stdout", outConsole), newTee("stderr", errConsole))
		}
	} else {
		waitErr, err = runPipes(ctx, cmd, newTee("stdout", outConsole), newTee("stderr", errConsole))
	}
	if err != nil {
		return -1, err
	}

	return exitCode(waitErr)
}

// runPipes runs cmd with its stdout and stderr pumped into separate
// tees. It returns the error of cmd.Wait separately from errors
// starting the command.
func runPipes(ctx context.Context, cmd *exec.Cmd, stdoutTee, stderrTee *teeStream) (waitErr, err error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stderr pipe")
	}
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start command")
	}

	exited := make(chan struct{})
	defer close(exited)
	forwardSignals(ctx, exited, cmd)

	var g errgroup.Group
	g.Go(func() error { return pumpInto(stdoutTee, stdout) })
	g.Go(func() error { return pumpInto(stderrTee, stderr) })

	// both pipes must be drained before Wait closes them
	//nolint:errcheck // Why: read errors only mean the child went away
	g.Wait()

	return cmd.Wait(), nil
}

// pumpInto copies r into tee and flushes the final partial line.
func pumpInto(tee *teeStream, r io.Reader) error {
	_, err := io.Copy(tee, r)
	tee.flush()
	return err
}

// forwardSignals forwards interrupts and termination signals to the
// child until exited is closed, and kills the child when ctx is done.
func forwardSignals(ctx context.Context, exited <-chan struct{}, cmd *exec.Cmd) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
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
				//nolint:errcheck // Why: Best effort
				cmd.Process.Signal(s)
			}
		}
	}()
}

// exitCode turns the result of cmd.Wait into an exit code.
func exitCode(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}

	var execErr *exec.ExitError
	if errors.As(waitErr, &execErr) {
		return execErr.ExitCode(), nil
	}
	return -1, errors.Wrap(waitErr, "failed to wait for command")
}

// drainThenClose closes c once done is closed or timeout has passed,
// whichever comes first.
func drainThenClose(done <-chan struct{}, c io.Closer, timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-done:
	case <-t.C:
	}
	return c.Close()
}
