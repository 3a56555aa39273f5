// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Loading a Config from a YAML file and the environment.

package teelog

import (
	"time"

	"github.com/getoutreach/teelog/pkg/cfg"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Environment variables overriding values from a config file.
const (
	EnvLogsDir       = "TEELOG_LOGS_DIR"
	EnvTimezone      = "TEELOG_TIMEZONE"
	EnvRetentionDays = "TEELOG_RETENTION_DAYS"
	EnvFileOutput    = "TEELOG_FILE_OUTPUT"
	EnvConsoleOutput = "TEELOG_CONSOLE_OUTPUT"
)

// fileConfig is the YAML representation of a Config. Fields left out
// of the file keep their defaults.
type fileConfig struct {
	Timezone         *string `yaml:"timezone"`
	LogsDir          *string `yaml:"logs_dir"`
	RetentionDays    *int    `yaml:"retention_days"`
	FilenamePattern  *string `yaml:"filename_pattern"`
	TimestampFormat  *string `yaml:"timestamp_format"`
	LineTemplate     *string `yaml:"line_template"`
	FileOutput       *bool   `yaml:"file_output"`
	ConsoleOutput    *bool   `yaml:"console_output"`
	FileEncoding     *string `yaml:"file_encoding"`
	CleanupOnStartup *bool   `yaml:"cleanup_on_startup"`
}

// LoadConfig reads the named YAML file with r, layers it over
// DefaultConfig and applies the environment overrides. A missing
// timezone means the local timezone. Use cfg.DefaultReader() unless
// testing.
func LoadConfig(r cfg.Reader, name string) (Config, error) {
	var fc fileConfig
	if err := r.Load(name, &fc); err != nil {
		return Config{}, err
	}

	c := DefaultConfig(time.Local)
	if fc.Timezone != nil {
		loc, err := loadTimezone(*fc.Timezone)
		if err != nil {
			return Config{}, err
		}
		c.Timezone = loc
	}

	setString(&c.LogsDir, fc.LogsDir)
	setString(&c.FilenamePattern, fc.FilenamePattern)
	setString(&c.TimestampFormat, fc.TimestampFormat)
	setString(&c.LineTemplate, fc.LineTemplate)
	setString(&c.FileEncoding, fc.FileEncoding)
	if fc.RetentionDays != nil {
		c.RetentionDays = *fc.RetentionDays
	}
	setBool(&c.FileOutput, fc.FileOutput)
	setBool(&c.ConsoleOutput, fc.ConsoleOutput)
	setBool(&c.CleanupOnStartup, fc.CleanupOnStartup)

	if err := c.ApplyEnvironment(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ApplyEnvironment overrides c with the TEELOG_* variables that are
// set, and expands a leading ~ in LogsDir.
func (c *Config) ApplyEnvironment() error {
	if dir, err := cfg.EnvString(EnvLogsDir); err == nil {
		c.LogsDir = dir
	}

	if name, err := cfg.EnvString(EnvTimezone); err == nil {
		loc, err := loadTimezone(name)
		if err != nil {
			return err
		}
		c.Timezone = loc
	}

	if _, err := cfg.EnvString(EnvRetentionDays); err == nil {
		days, err := cfg.EnvInt(EnvRetentionDays)
		if err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
		c.RetentionDays = days
	}

	for name, dst := range map[string]*bool{EnvFileOutput: &c.FileOutput, EnvConsoleOutput: &c.ConsoleOutput} {
		if _, err := cfg.EnvString(name); err != nil {
			continue
		}
		on, err := cfg.EnvBool(name)
		if err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
		*dst = on
	}

	dir, err := homedir.Expand(c.LogsDir)
	if err != nil {
		return errors.Wrapf(ErrInvalidConfig, "logs dir %q: %v", c.LogsDir, err)
	}
	c.LogsDir = dir
	return nil
}

// loadTimezone resolves an IANA timezone name such as Europe/London.
func loadTimezone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "timezone %q: %v", name, err)
	}
	return loc, nil
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst, src *bool) {
	if src != nil {
		*dst = *src
	}
}
