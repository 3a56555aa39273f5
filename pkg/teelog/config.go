// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Configuration record for a session and its validation.

package teelog

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrInvalidConfig is wrapped by every error caused by a Config that
// cannot be used.
var ErrInvalidConfig = errors.New("invalid teelog config")

const (
	// DefaultLogsDir is the directory log files are written to.
	DefaultLogsDir = "logs"

	// DefaultRetentionDays is how many days of log files are kept.
	DefaultRetentionDays = 7

	// DefaultFilenamePattern is the strftime pattern used for log
	// file names.
	DefaultFilenamePattern = "log_%d-%m-%Y.txt"

	// DefaultTimestampFormat is the strftime format of the timestamp
	// prefixed to every line.
	DefaultTimestampFormat = "%H:%M:%S"

	// DefaultLineTemplate is the template each line is rendered with.
	DefaultLineTemplate = "[{timestamp}] {message}"

	// DefaultFileEncoding is the charset log files are written in.
	DefaultFileEncoding = "UTF-8"
)

// Config is the immutable configuration of a Session.
type Config struct {
	// Timezone decides both the timestamps and the day boundaries used
	// for rotation. Required.
	Timezone *time.Location

	// LogsDir is the directory log files are written to. Created on
	// first use.
	LogsDir string

	// RetentionDays is the age, in days, after which a log file is
	// removed by the startup sweep.
	RetentionDays int

	// FilenamePattern is a strftime pattern producing the file name
	// for a given day, e.g. log_%d-%m-%Y.txt.
	FilenamePattern string

	// TimestampFormat is a strftime format for the {timestamp}
	// placeholder.
	TimestampFormat string

	// LineTemplate renders a line for the file. It must contain
	// {message} and may contain {timestamp}.
	LineTemplate string

	// FileOutput enables writing to log files.
	FileOutput bool

	// ConsoleOutput enables passing output through to the original
	// stdout and stderr.
	ConsoleOutput bool

	// FileEncoding is the IANA name of the charset used for log files.
	FileEncoding string

	// CleanupOnStartup enables the retention sweep during Setup.
	CleanupOnStartup bool
}

// DefaultConfig returns the default configuration for the provided
// timezone.
func DefaultConfig(tz *time.Location) Config {
	return Config{
		Timezone:         tz,
		LogsDir:          DefaultLogsDir,
		RetentionDays:    DefaultRetentionDays,
		FilenamePattern:  DefaultFilenamePattern,
		TimestampFormat:  DefaultTimestampFormat,
		LineTemplate:     DefaultLineTemplate,
		FileOutput:       true,
		ConsoleOutput:    true,
		FileEncoding:     DefaultFileEncoding,
		CleanupOnStartup: true,
	}
}

// placeholderRegexp matches {name} placeholders in a line template.
var placeholderRegexp = regexp.MustCompile(`\{([A-Za-z_]*)\}`)

// compiledConfig is a validated Config plus the values derived from it.
type compiledConfig struct {
	Config

	// filenameLayout is FilenamePattern as a Go time layout, used to
	// recover the date from a file name.
	filenameLayout string

	// yearless is set when file names do not carry the year, which is
	// then inferred when reading a date back.
	yearless bool

	// encoding is nil when files are written as UTF-8.
	encoding encoding.Encoding
}

// compile validates c and derives the values a session needs.
func (c Config) compile() (*compiledConfig, error) {
	if c.Timezone == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "timezone is required")
	}
	if c.LogsDir == "" {
		c.LogsDir = DefaultLogsDir
	}
	if c.RetentionDays < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "retention days must not be negative, got %d", c.RetentionDays)
	}
	if c.TimestampFormat == "" {
		return nil, errors.Wrap(ErrInvalidConfig, "timestamp format is empty")
	}

	if err := validateTemplate(c.LineTemplate); err != nil {
		return nil, err
	}

	layout, yearless, err := validateFilenamePattern(c.FilenamePattern, c.Timezone)
	if err != nil {
		return nil, err
	}

	enc, err := lookupEncoding(c.FileEncoding)
	if err != nil {
		return nil, err
	}

	return &compiledConfig{
		Config:         c,
		filenameLayout: layout,
		yearless:       yearless,
		encoding:       enc,
	}, nil
}

// validateTemplate ensures the template has a {message} placeholder
// and no placeholder other than {timestamp} and {message}.
func validateTemplate(tmpl string) error {
	if !strings.Contains(tmpl, "{message}") {
		return errors.Wrapf(ErrInvalidConfig, "line template %q has no {message} placeholder", tmpl)
	}

	for _, m := range placeholderRegexp.FindAllStringSubmatch(tmpl, -1) {
		switch m[1] {
		case "timestamp", "message":
		default:
			return errors.Wrapf(ErrInvalidConfig, "line template %q has unknown placeholder %s", tmpl, m[0])
		}
	}
	return nil
}

// validateFilenamePattern returns the Go layout for pattern and
// whether the names it produces lack the year. The pattern must name
// a plain file and must change from one day to the next, otherwise
// rotation and retention cannot work.
func validateFilenamePattern(pattern string, tz *time.Location) (string, bool, error) {
	if pattern == "" {
		return "", false, errors.Wrap(ErrInvalidConfig, "filename pattern is empty")
	}

	layout, err := strftime.Layout(pattern)
	if err != nil {
		return "", false, errors.Wrapf(ErrInvalidConfig, "filename pattern %q: %v", pattern, err)
	}

	day := time.Date(2001, time.February, 3, 12, 0, 0, 0, tz)
	name := strftime.Format(pattern, day)
	if name != filepath.Base(name) || name == "." {
		return "", false, errors.Wrapf(ErrInvalidConfig, "filename pattern %q must produce a file name, got %q", pattern, name)
	}
	if name == strftime.Format(pattern, day.AddDate(0, 0, 1)) {
		return "", false, errors.Wrapf(ErrInvalidConfig, "filename pattern %q does not change from day to day", pattern)
	}

	yearless := name == strftime.Format(pattern, day.AddDate(1, 0, 0))
	return layout, yearless, nil
}

// lookupEncoding resolves an IANA charset name. UTF-8 resolves to nil
// since strings are already UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "file encoding %q: %v", name, err)
	}
	if enc == nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "file encoding %q is not supported", name)
	}
	return enc, nil
}
