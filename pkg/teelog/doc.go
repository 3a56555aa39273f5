// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: See package comment

// Package teelog mirrors everything a process writes to stdout and
// stderr into a daily log file while leaving the console output
// untouched.
//
// A Session replaces os.Stdout and os.Stderr with pipes for its
// lifetime. Every chunk read back from a pipe is written to the
// original file unchanged and, once a line is complete, appended to
// the day's log file with a timestamp:
//
//	sess, err := teelog.New(teelog.DefaultConfig(time.Local))
//	if err != nil {
//	    return err
//	}
//	if err := sess.Setup(); err != nil {
//	    return err
//	}
//	defer sess.Recover()
//	defer sess.Shutdown()
//
//	fmt.Println("hello") // console: "hello", file: "[14:03:11] hello"
//
// Log files are named after the day in the configured timezone
// (log_19-10-2026.txt by default) and a new file is opened the first
// time a line is written after midnight. Files older than the
// retention period are deleted when a session starts.
//
// Writes to os.Stdout and os.Stderr go through a pipe that a
// goroutine copies out, so output still in the pipe when the process
// calls os.Exit directly is lost from the console as well as the
// file. Use Session.Exit instead of os.Exit, or Hook, when the last
// lines matter. The log package is pointed at the stderr tee without
// a pipe in between, so log.Fatal output is kept.
//
// The Go runtime writes crash output directly to file descriptor 2.
// That descriptor is never replaced, so tracebacks keep reaching the
// console, and the current log file is registered as the runtime's
// crash output so the traceback lands in the file as well. For a
// process that may exit without calling Shutdown, Hook re-runs it as
// a supervised child and records its output from the outside.
package teelog
