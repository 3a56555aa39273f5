// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Fan-out of one output stream to the console and the
// log file.

package teelog

import (
	"io"
	"os"
	"sync"
)

// _ is a type assertion to ensure that teeStream implements io.Writer
var _ io.Writer = (*teeStream)(nil)

// teeStream passes every write through to the console unchanged and
// feeds it to the stream's line formatter, appending completed lines
// to the sink. Writes never fail: console errors are ignored and file
// errors disable the sink.
type teeStream struct {
	// name labels the stream in metrics.
	name string

	// mu serialises buffer updates and appends for this stream.
	mu sync.Mutex

	// console is the original output, nil when console output is off.
	// It is never closed by the tee.
	console io.Writer

	formatter *lineFormatter
	sink      *fileSink
	metrics   *Metrics
}

func newTeeStream(name string, console io.Writer, formatter *lineFormatter, sink *fileSink, m *Metrics) *teeStream {
	return &teeStream{
		name:      name,
		console:   console,
		formatter: formatter,
		sink:      sink,
		metrics:   m,
	}
}

// Write implements io.Writer.
func (t *teeStream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// a rollover banner goes out before the chunk that triggered it
	t.sink.open()

	if t.console != nil {
		//nolint:errcheck // Why: a broken console must not stop file logging
		t.console.Write(p)
	}

	if t.sink != nil {
		lines := t.formatter.feed(p)
		t.sink.appendAll(lines)
		t.metrics.linesWritten(t.name, len(lines))
	}
	return len(p), nil
}

// flush writes out a pending partial line as a final entry. Calling
// it again without new output writes nothing.
func (t *teeStream) flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sink == nil {
		return
	}
	if line, ok := t.formatter.flush(); ok {
		t.sink.append(line)
		t.metrics.linesWritten(t.name, 1)
	}
}

// sync forwards a sync to the console, when it is a file, and to the
// sink.
func (t *teeStream) sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f, ok := t.console.(*os.File); ok {
		// consoles such as terminals and pipes cannot be synced
		//nolint:errcheck // Why: see above
		f.Sync()
	}
	return t.sink.sync()
}

// interceptor stands in for an *os.File. Writes go to the write end of
// a pipe, and a pump goroutine drains the read end into a teeStream.
type interceptor struct {
	// orig is the file that was installed before the interceptor.
	orig *os.File

	r, w *os.File
	tee  *teeStream

	// done is closed once the pump has drained the pipe.
	done chan struct{}
}

// newInterceptor creates the pipe and starts the pump.
func newInterceptor(orig *os.File, tee *teeStream) (*interceptor, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	i := &interceptor{
		orig: orig,
		r:    r,
		w:    w,
		tee:  tee,
		done: make(chan struct{}),
	}
	go i.pump()
	return i, nil
}

// pump copies the pipe into the tee until every write end is closed.
func (i *interceptor) pump() {
	defer close(i.done)

	//nolint:errcheck // Why: the tee never fails, read errors end the pump
	io.Copy(i.tee, i.r)

	i.tee.flush()

	//nolint:errcheck // Why: best effort
	i.r.Close()
}

// stop closes the write end and waits for everything written so far
// to reach the tee, including a trailing partial line.
func (i *interceptor) stop() {
	//nolint:errcheck // Why: closing a pipe we own
	i.w.Close()
	<-i.done
}
