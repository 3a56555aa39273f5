// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Daily log file with rotation on day change.

package teelog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// bannerRule is the horizontal rule framing a banner.
var bannerRule = strings.Repeat("–", 50)

// banner returns the lines announcing a log file for the day of now.
func banner(now time.Time, dir string) []string {
	return []string{
		bannerRule,
		"Logging initiated for " + strftime.Format("%A, %d %B %Y", now),
		"Log directory: " + dir,
		bannerRule,
	}
}

// fileSink owns the currently open log file. The file always belongs
// to the day of the most recent append; an append on a later day
// closes it and opens that day's file.
//
// Once the directory or a file cannot be created or written the sink
// disables itself for good and reports the failure once.
//
// A nil *fileSink is valid and does nothing, which is how file output
// being turned off is represented.
type fileSink struct {
	mu sync.Mutex

	cc      *compiledConfig
	clock   clockSource
	log     *slog.Logger
	metrics *Metrics

	// console receives banners. nil when console output is off.
	console io.Writer

	// crashOutput registers the open file as the runtime's crash
	// output.
	crashOutput bool

	file     *os.File
	path     string
	dayKey   string
	encoder  *encoding.Encoder
	disabled bool
}

// newFileSink returns nil when file output is disabled.
func newFileSink(cc *compiledConfig, clock clockSource, log *slog.Logger, m *Metrics, console io.Writer) *fileSink {
	if !cc.FileOutput {
		return nil
	}

	s := &fileSink{
		cc:      cc,
		clock:   clock,
		log:     log,
		metrics: m,
		console: console,
	}
	if cc.encoding != nil {
		s.encoder = encoding.ReplaceUnsupported(cc.encoding.NewEncoder())
	}
	return s
}

// open makes sure today's file is open, writing the banner if it had
// to be opened.
func (s *fileSink) open() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureOpen(s.clock.Now())
}

// append writes line plus a terminator to today's file.
func (s *fileSink) append(line string) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ensureOpen(s.clock.Now()) {
		return
	}
	s.writeLocked(line + "\n")
}

// appendAll writes lines under a single lock so they stay together.
func (s *fileSink) appendAll(lines []string) {
	if s == nil || len(lines) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ensureOpen(s.clock.Now()) {
		return
	}
	for _, line := range lines {
		if !s.writeLocked(line + "\n") {
			return
		}
	}
}

// currentPath returns the path of the open file, or "" when none is.
func (s *fileSink) currentPath() string {
	if s == nil {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// sync flushes the open file to disk.
func (s *fileSink) sync() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

// close syncs and closes the open file. Later appends reopen a file
// unless the sink is disabled, so close is only called on shutdown.
func (s *fileSink) close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.disabled = true
	return s.closeLocked()
}

// ensureOpen opens the file for the day of now if it is not the open
// one already. It returns false when the sink is disabled.
func (s *fileSink) ensureOpen(now time.Time) bool {
	if s.disabled {
		return false
	}

	key := dayKey(now)
	if s.file != nil && key == s.dayKey {
		return true
	}

	rotating := s.file != nil
	if rotating {
		//nolint:errcheck // Why: the old day's file is done, nothing to recover
		s.closeLocked()
		s.log.Debug("closed log file", "day", s.dayKey)
	}

	dir, err := filepath.Abs(s.cc.LogsDir)
	if err != nil {
		dir = s.cc.LogsDir
	}

	// the console gets the banner even when the file cannot be opened
	lines := banner(now, dir)
	if s.console != nil {
		for _, line := range lines {
			//nolint:errcheck // Why: console output is best effort
			fmt.Fprintln(s.console, line)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.disable(errors.Wrap(err, "failed to create log directory"))
		return false
	}

	path := filepath.Join(dir, strftime.Format(s.cc.FilenamePattern, now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.disable(errors.Wrap(err, "failed to open log file"))
		return false
	}

	s.file = f
	s.path = path
	s.dayKey = key
	if rotating {
		s.metrics.rotated()
	}

	if s.crashOutput {
		if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err != nil {
			s.log.Warn("failed to register log file for crash output", "error", err, "path", path)
		}
	}

	for _, line := range lines {
		if !s.writeLocked(line + "\n") {
			return false
		}
	}
	return true
}

// writeLocked writes text to the open file, disabling the sink on
// failure. The caller must hold the mutex.
func (s *fileSink) writeLocked(text string) bool {
	data := []byte(text)
	if s.encoder != nil {
		encoded, err := s.encoder.String(text)
		if err != nil {
			s.disable(errors.Wrapf(err, "failed to encode as %s", s.cc.FileEncoding))
			return false
		}
		data = []byte(encoded)
	}

	if _, err := s.file.Write(data); err != nil {
		s.disable(errors.Wrap(err, "failed to write log file"))
		return false
	}
	return true
}

// disable turns the sink off for the rest of the session and reports
// err. Only the first failure is reported.
func (s *fileSink) disable(err error) {
	if s.disabled {
		return
	}
	s.disabled = true
	s.metrics.sinkFailed()

	s.log.Error("file logging disabled for the rest of the session; output continues on the console",
		"error", err, "dir", s.cc.LogsDir)

	//nolint:errcheck // Why: already failing, the original error is what matters
	s.closeLocked()
}

// closeLocked closes the open file. The caller must hold the mutex.
func (s *fileSink) closeLocked() error {
	if s.file == nil {
		return nil
	}

	if s.crashOutput {
		//nolint:errcheck // Why: clearing can only fail for a bad file
		debug.SetCrashOutput(nil, debug.CrashOptions{})
	}

	f := s.file
	s.file = nil
	s.path = ""

	syncErr := f.Sync()
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close log file")
	}
	if syncErr != nil {
		return errors.Wrap(syncErr, "failed to sync log file")
	}
	return nil
}
