// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Shared helpers for the teelog tests.

package teelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/getoutreach/teelog/pkg/olog"
	"github.com/jonboulle/clockwork"
	"github.com/ncruces/go-strftime"
	"gotest.tools/v3/assert"
)

// testTZ is deliberately not UTC so day boundaries are exercised in
// the configured timezone.
var testTZ = time.FixedZone("UTC+2", 2*60*60)

// harness swaps os.Stdout and os.Stderr for files standing in for the
// console, and owns a logs directory and a fake clock.
type harness struct {
	t     *testing.T
	dir   string
	clock clockwork.FakeClock
	out   *os.File
	err   *os.File
	logs  *olog.TestCapturer
}

func newHarness(t *testing.T, start time.Time) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		dir:   filepath.Join(t.TempDir(), "logs"),
		clock: clockwork.NewFakeClockAt(start),
	}
	h.out = createFile(t, "console-stdout")
	h.err = createFile(t, "console-stderr")

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = h.out, h.err
	t.Cleanup(func() {
		os.Stdout, os.Stderr = origOut, origErr
	})
	return h
}

func (h *harness) config() Config {
	c := DefaultConfig(testTZ)
	c.LogsDir = h.dir
	return c
}

// session creates a session that is shut down when the test ends.
func (h *harness) session(c Config, opts ...Option) *Session {
	h.t.Helper()

	logger, capture := olog.NewTestLogger()
	h.logs = capture

	s, err := New(c, append([]Option{WithClock(h.clock), WithLogger(logger)}, opts...)...)
	assert.NilError(h.t, err)
	h.t.Cleanup(func() {
		//nolint:errcheck // Why: already asserted on where it matters
		s.Shutdown()
	})
	return s
}

func (h *harness) stdout() string {
	return readFile(h.t, h.out.Name())
}

func (h *harness) stderr() string {
	return readFile(h.t, h.err.Name())
}

// logFile returns the contents of the log file for day.
func (h *harness) logFile(day time.Time) string {
	return readFile(h.t, filepath.Join(h.dir, strftime.Format(DefaultFilenamePattern, day)))
}

// bannerText is the banner as it appears on the console and in files.
func bannerText(day time.Time, dir string) string {
	return strings.Join(banner(day, dir), "\n") + "\n"
}

func createFile(t *testing.T, name string) *os.File {
	t.Helper()

	f, err := os.Create(filepath.Join(t.TempDir(), name))
	assert.NilError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	return string(data)
}

// compileConfig compiles c, failing the test on error.
func compileConfig(t *testing.T, c Config) *compiledConfig {
	t.Helper()

	cc, err := c.compile()
	assert.NilError(t, err)
	return cc
}
