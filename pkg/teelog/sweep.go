// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Startup deletion of log files past the retention
// period.

package teelog

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// SweepResult summarises a retention sweep.
type SweepResult struct {
	// Deleted are the names of the files that were removed.
	Deleted []string

	// Kept is the number of log files inside the retention period.
	Kept int

	// Failed are the names of expired files that could not be removed.
	Failed []string
}

// removeFile is swapped out by tests.
//
// nolint:gochecknoglobals // Why: test seam
var removeFile = os.Remove

// Sweep deletes the log files in cfg.LogsDir older than
// cfg.RetentionDays. Only files whose names match cfg.FilenamePattern
// are considered. The returned error is only ever a configuration
// error; problems with individual files are reported through the
// logger and listed in the result.
func Sweep(cfg Config, opts ...Option) (SweepResult, error) {
	cc, err := cfg.compile()
	if err != nil {
		return SweepResult{}, err
	}

	o := newOptions(opts)
	log := o.logger
	if log == nil {
		log = slog.Default()
	}

	clock := newClockSource(o.clock, cc.Timezone)
	return sweep(cc, clock.Now(), log, o.metrics), nil
}

// sweep removes files dated strictly before the day that is
// RetentionDays before now.
func sweep(cc *compiledConfig, now time.Time, log *slog.Logger, m *Metrics) SweepResult {
	var res SweepResult

	entries, err := os.ReadDir(cc.LogsDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to list log directory, skipping cleanup", "error", err, "dir", cc.LogsDir)
		}
		return res
	}

	cutoff := startOfDay(now, cc.Timezone).AddDate(0, 0, -cc.RetentionDays)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		day, ok := fileDay(cc, entry.Name(), now)
		if !ok {
			continue
		}

		if !day.Before(cutoff) {
			res.Kept++
			continue
		}

		if err := removeFile(filepath.Join(cc.LogsDir, entry.Name())); err != nil {
			log.Warn("failed to remove old log file, skipping", "error", err, "file", entry.Name())
			res.Failed = append(res.Failed, entry.Name())
			continue
		}

		log.Debug("removed old log file", "file", entry.Name())
		res.Deleted = append(res.Deleted, entry.Name())
		m.swept()
	}

	return res
}

// fileDay recovers the day a log file belongs to from its name. It
// returns false for names the filename pattern could not have
// produced. Names without a year belong to the latest matching day
// that is not after now.
func fileDay(cc *compiledConfig, name string, now time.Time) (time.Time, bool) {
	t, err := time.ParseInLocation(cc.filenameLayout, name, cc.Timezone)
	if err != nil {
		return time.Time{}, false
	}
	if !cc.yearless {
		return startOfDay(t, cc.Timezone), true
	}

	today := startOfDay(now, cc.Timezone)
	for year := today.Year(); year >= today.Year()-4; year-- {
		day := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, cc.Timezone)
		// 29 February only exists in leap years
		if day.Day() != t.Day() {
			continue
		}
		if !day.After(today) {
			return day, true
		}
	}
	return time.Time{}, false
}
