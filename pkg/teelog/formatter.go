// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Splits captured output into timestamped lines.

package teelog

import (
	"bytes"
	"strings"

	"github.com/ncruces/go-strftime"
)

// lineFormatter assembles lines from arbitrary chunks of output and
// renders each complete line with the line template. It keeps the
// trailing fragment that has no terminator yet. Each stream owns its
// own formatter; it is not safe for concurrent use.
type lineFormatter struct {
	clock           clockSource
	timestampFormat string
	template        string

	// partial is the text written since the last '\n'.
	partial []byte
}

func newLineFormatter(cc *compiledConfig, clock clockSource) *lineFormatter {
	return &lineFormatter{
		clock:           clock,
		timestampFormat: cc.TimestampFormat,
		template:        cc.LineTemplate,
	}
}

// feed consumes chunk and returns the formatted lines it completed.
// An empty chunk produces nothing. A bare "\n" produces a line with
// only a timestamp.
func (f *lineFormatter) feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	var lines []string
	for {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			f.partial = append(f.partial, chunk...)
			return lines
		}

		var msg string
		if len(f.partial) > 0 {
			msg = string(append(f.partial, chunk[:i]...))
			f.partial = f.partial[:0]
		} else {
			msg = string(chunk[:i])
		}
		lines = append(lines, f.format(strings.TrimSuffix(msg, "\r")))
		chunk = chunk[i+1:]
	}
}

// flush returns the pending partial line, formatted, and clears it.
// It returns false when nothing is pending.
func (f *lineFormatter) flush() (string, bool) {
	if len(f.partial) == 0 {
		return "", false
	}

	msg := string(f.partial)
	f.partial = f.partial[:0]
	return f.format(strings.TrimSuffix(msg, "\r")), true
}

// pending reports whether a partial line is buffered.
func (f *lineFormatter) pending() bool {
	return len(f.partial) > 0
}

// format renders msg with the template and the current time.
func (f *lineFormatter) format(msg string) string {
	ts := strftime.Format(f.timestampFormat, f.clock.Now())

	// a single pass, so placeholders inside msg are left alone
	return strings.NewReplacer("{timestamp}", ts, "{message}", msg).Replace(f.template)
}
