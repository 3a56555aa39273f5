// Copyright 2026 Outreach Corporation. All Rights Reserved.

//go:build !or_e2e

package teelog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"
)

var sessionStart = time.Date(2026, 10, 19, 10, 0, 0, 0, testTZ)

// entries returns the lines of a log file after its banner.
func entries(t *testing.T, contents string) []string {
	t.Helper()

	lines := strings.Split(strings.TrimSuffix(contents, "\n"), "\n")
	assert.Assert(t, len(lines) >= 4, "missing banner in %q", contents)
	return lines[4:]
}

func TestSessionTeesOutput(t *testing.T) {
	h := newHarness(t, sessionStart)
	m := NewMetrics(prometheus.NewRegistry())
	s := h.session(h.config(), WithMetrics(m))

	assert.NilError(t, s.Setup())
	assert.Equal(t, s.State(), StateActive)

	fmt.Print("hello\nwor")
	fmt.Print("ld\n")
	fmt.Fprintln(os.Stderr, "oops")
	os.Stdout.WriteString("tail")

	assert.NilError(t, s.Shutdown())
	assert.Equal(t, s.State(), StateClosed)

	// the console sees exactly what was written, after the banner
	assert.Equal(t, h.stdout(), bannerText(sessionStart, h.dir)+"hello\nworld\ntail")
	assert.Equal(t, h.stderr(), "oops\n")

	got := entries(t, h.logFile(sessionStart))
	assert.Assert(t, cmp.Contains(got, "[10:00:00] oops"))

	var stdoutLines []string
	for _, l := range got {
		if l != "[10:00:00] oops" {
			stdoutLines = append(stdoutLines, l)
		}
	}
	assert.DeepEqual(t, stdoutLines, []string{"[10:00:00] hello", "[10:00:00] world", "[10:00:00] tail"})

	assert.Equal(t, testutil.ToFloat64(m.linesTotal.WithLabelValues("stdout")), float64(3))
	assert.Equal(t, testutil.ToFloat64(m.linesTotal.WithLabelValues("stderr")), float64(1))
}

func TestSessionEmptyWritesAndBlankLines(t *testing.T) {
	h := newHarness(t, sessionStart)
	s := h.session(h.config())
	assert.NilError(t, s.Setup())

	os.Stdout.Write(nil)
	fmt.Print("\n")

	assert.NilError(t, s.Shutdown())

	assert.Equal(t, h.stdout(), bannerText(sessionStart, h.dir)+"\n")
	assert.DeepEqual(t, entries(t, h.logFile(sessionStart)), []string{"[10:00:00] "})
}

func TestSessionRotatesAtMidnight(t *testing.T) {
	day1 := time.Date(2026, 10, 19, 23, 59, 30, 0, testTZ)
	h := newHarness(t, day1)
	s := h.session(h.config())
	assert.NilError(t, s.Setup())

	fmt.Println("before")

	// lines are stamped when the pump hands them over, wait for it
	path := filepath.Join(h.dir, "log_19-10-2026.txt")
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		data, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(data), "before") {
			return poll.Success()
		}
		return poll.Continue("waiting for first line")
	}, poll.WithTimeout(5*time.Second))

	h.clock.Advance(time.Minute)
	day2 := h.clock.Now().In(testTZ)
	fmt.Println("after")

	assert.NilError(t, s.Shutdown())

	assert.Equal(t, h.logFile(day1), bannerText(day1, h.dir)+"[23:59:30] before\n")
	assert.Equal(t, h.logFile(day2), bannerText(day2, h.dir)+"[00:00:30] after\n")
	assert.Equal(t, h.stdout(), bannerText(day1, h.dir)+"before\n"+bannerText(day2, h.dir)+"after\n")
}

func TestSessionSetupTwice(t *testing.T) {
	h := newHarness(t, sessionStart)
	s := h.session(h.config())

	assert.NilError(t, s.Setup())
	pipe := os.Stdout
	assert.NilError(t, s.Setup())
	assert.Equal(t, os.Stdout, pipe, "a second setup must not install another layer")

	fmt.Println("once")
	assert.NilError(t, s.Shutdown())

	assert.Equal(t, h.stdout(), bannerText(sessionStart, h.dir)+"once\n")
	assert.DeepEqual(t, entries(t, h.logFile(sessionStart)), []string{"[10:00:00] once"})
}

func TestSessionLifecycleMisuse(t *testing.T) {
	h := newHarness(t, sessionStart)
	s := h.session(h.config())

	assert.NilError(t, s.Shutdown(), "shutdown while idle")
	assert.Equal(t, s.State(), StateIdle)

	assert.NilError(t, s.Setup())
	assert.NilError(t, s.Shutdown())
	assert.NilError(t, s.Shutdown(), "shutdown while closed")

	err := s.Setup()
	assert.Assert(t, errors.Is(err, ErrSessionClosed))
	assert.Equal(t, os.Stdout, h.out)
}

func TestSessionRestoresOriginalStreams(t *testing.T) {
	h := newHarness(t, sessionStart)
	s := h.session(h.config())

	assert.NilError(t, s.Setup())
	assert.Assert(t, os.Stdout != h.out)
	assert.Assert(t, os.Stderr != h.err)
	fmt.Println("during")
	assert.NilError(t, s.Shutdown())

	assert.Equal(t, os.Stdout, h.out)
	assert.Equal(t, os.Stderr, h.err)

	before := h.logFile(sessionStart)
	fmt.Println("after")
	fmt.Fprintln(os.Stderr, "after")

	assert.Equal(t, h.logFile(sessionStart), before, "no file writes after shutdown")
	assert.Equal(t, h.stdout(), bannerText(sessionStart, h.dir)+"during\nafter\n")
	assert.Equal(t, h.stderr(), "after\n")
}

func TestSessionLeavesForeignWrapperInPlace(t *testing.T) {
	h := newHarness(t, sessionStart)
	s := h.session(h.config())
	assert.NilError(t, s.Setup())

	foreign := createFile(t, "foreign")
	os.Stdout = foreign

	assert.NilError(t, s.Shutdown())

	assert.Equal(t, os.Stdout, foreign)
	assert.Equal(t, os.Stderr, h.err)
	assert.Assert(t, cmp.Contains(h.logs.Messages(), "os.Stdout was replaced after setup, leaving it in place"))
}

func TestSessionRedirectsStandardLogger(t *testing.T) {
	h := newHarness(t, sessionStart)

	origOut, origFlags := log.Writer(), log.Flags()
	log.SetOutput(h.err)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(origOut)
		log.SetFlags(origFlags)
	})

	s := h.session(h.config())
	assert.NilError(t, s.Setup())
	log.Print("from the log package")
	assert.NilError(t, s.Shutdown())

	assert.Equal(t, log.Writer(), h.err)
	assert.Equal(t, h.stderr(), "from the log package\n")
	assert.DeepEqual(t, entries(t, h.logFile(sessionStart)), []string{"[10:00:00] from the log package"})
}

func TestSessionOnlyOneActive(t *testing.T) {
	h := newHarness(t, sessionStart)
	first := h.session(h.config())
	assert.NilError(t, first.Setup())

	second := h.session(h.config())
	assert.NilError(t, second.Setup())
	assert.Equal(t, second.State(), StateIdle)
	assert.DeepEqual(t, h.logs.Messages(), []string{"logging is already set up"})

	fmt.Println("logged once")
	assert.NilError(t, second.Shutdown())
	assert.NilError(t, first.Shutdown())

	assert.DeepEqual(t, entries(t, h.logFile(sessionStart)), []string{"[10:00:00] logged once"})
}

func TestSessionFileOutputDisabled(t *testing.T) {
	h := newHarness(t, sessionStart)
	c := h.config()
	c.FileOutput = false
	s := h.session(c)

	assert.NilError(t, s.Setup())
	fmt.Println("console only")
	assert.Equal(t, s.LogPath(), "")
	assert.NilError(t, s.Shutdown())

	assert.Equal(t, h.stdout(), bannerText(sessionStart, h.dir)+"console only\n")
	_, err := os.Stat(h.dir)
	assert.Assert(t, os.IsNotExist(err), "no directory may be created")
}

func TestSessionConsoleOutputDisabled(t *testing.T) {
	h := newHarness(t, sessionStart)
	c := h.config()
	c.ConsoleOutput = false
	s := h.session(c)

	assert.NilError(t, s.Setup())
	fmt.Println("file only")
	fmt.Fprintln(os.Stderr, "file only too")
	assert.NilError(t, s.Shutdown())

	assert.Equal(t, h.stdout(), "")
	assert.Equal(t, h.stderr(), "")
	assert.Equal(t, len(entries(t, h.logFile(sessionStart))), 2)
}

func TestSessionDegradesToConsole(t *testing.T) {
	h := newHarness(t, sessionStart)
	blocker := filepath.Join(t.TempDir(), "file")
	assert.NilError(t, os.WriteFile(blocker, nil, 0o644))

	c := h.config()
	c.LogsDir = filepath.Join(blocker, "logs")
	c.CleanupOnStartup = false
	s := h.session(c)

	assert.NilError(t, s.Setup())
	fmt.Println("one")
	fmt.Println("two")
	assert.NilError(t, s.Shutdown())

	assert.Equal(t, h.stdout(), bannerText(sessionStart, c.LogsDir)+"one\ntwo\n")
	assert.DeepEqual(t, h.logs.Messages(), []string{
		"file logging disabled for the rest of the session; output continues on the console",
	})
}

func TestSessionSweepsBeforeBanner(t *testing.T) {
	h := newHarness(t, sessionStart)
	names := writeDatedLogs(t, h.dir, DefaultFilenamePattern, 1, 6, 8, 30)

	s := h.session(h.config())
	assert.NilError(t, s.Setup())
	assert.NilError(t, s.Shutdown())

	for age, name := range names {
		_, err := os.Stat(filepath.Join(h.dir, name))
		if age > 7 {
			assert.Assert(t, os.IsNotExist(err), name)
		} else {
			assert.NilError(t, err, name)
		}
	}
	assert.Equal(t, h.logFile(sessionStart), bannerText(sessionStart, h.dir))
}

func TestSessionCleanupDisabled(t *testing.T) {
	h := newHarness(t, sessionStart)
	names := writeDatedLogs(t, h.dir, DefaultFilenamePattern, 30)

	c := h.config()
	c.CleanupOnStartup = false
	s := h.session(c)
	assert.NilError(t, s.Setup())
	assert.NilError(t, s.Shutdown())

	_, err := os.Stat(filepath.Join(h.dir, names[30]))
	assert.NilError(t, err)
}

func TestSessionSyncAndLogPath(t *testing.T) {
	h := newHarness(t, sessionStart)
	s := h.session(h.config())

	assert.NilError(t, s.Sync(), "sync while idle")
	assert.NilError(t, s.Setup())
	assert.Equal(t, s.LogPath(), filepath.Join(h.dir, "log_19-10-2026.txt"))
	assert.NilError(t, s.Sync())
	assert.NilError(t, s.Shutdown())
	assert.Equal(t, s.LogPath(), "")
	assert.Assert(t, s.ID() != "")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, StateIdle.String(), "idle")
	assert.Equal(t, StateActive.String(), "active")
	assert.Equal(t, StateClosed.String(), "closed")
	assert.Equal(t, State(9).String(), "State(9)")
}

func TestSessionConcurrentWriters(t *testing.T) {
	const writers, lines = 8, 250

	h := newHarness(t, sessionStart)
	m := NewMetrics(prometheus.NewRegistry())
	s := h.session(h.config(), WithMetrics(m))
	assert.NilError(t, s.Setup())

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range lines {
				fmt.Printf("writer %d line %d\n", w, i)
			}
		}()
	}
	wg.Wait()
	assert.NilError(t, s.Shutdown())

	got := entries(t, h.logFile(sessionStart))
	assert.Equal(t, len(got), writers*lines)

	// every entry is whole and each writer's lines keep their order
	next := make([]int, writers)
	for _, entry := range got {
		var w, i int
		_, err := fmt.Sscanf(entry, "[10:00:00] writer %d line %d", &w, &i)
		assert.NilError(t, err, entry)
		assert.Equal(t, entry, fmt.Sprintf("[10:00:00] writer %d line %d", w, i))
		assert.Equal(t, i, next[w], "writer %d out of order", w)
		next[w]++
	}

	assert.Equal(t, strings.Count(h.stdout(), "\n"), 4+writers*lines)
	assert.Equal(t, testutil.ToFloat64(m.linesTotal.WithLabelValues("stdout")), float64(writers*lines))
}
