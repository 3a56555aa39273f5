// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: See package comment

// Package cfg loads config files for teelog.
//
// Config is always decoded into a strongly typed struct:
//
//	var raw struct {
//	    LogsDir string `yaml:"logs_dir"`
//	}
//	if err := cfg.Load("teelog.yaml", &raw); err != nil {
//	    return err
//	}
//
// The default reader resolves relative names against the directory
// named by the TEELOG_CONFIG_DIR environment variable, falling back
// to the working directory. Tests swap the reader with
// SetDefaultReader or build their own with DirReader.
package cfg

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigDirEnvironmentVariable names the directory config files are
// read from by the default reader.
const ConfigDirEnvironmentVariable = "TEELOG_CONFIG_DIR"

// nolint:gochecknoglobals
var defaultReader = Reader(func(fileName string) ([]byte, error) {
	if filepath.IsAbs(fileName) {
		return os.ReadFile(fileName)
	}

	dir, err := EnvString(ConfigDirEnvironmentVariable)
	if err != nil {
		dir = "."
	}
	return os.ReadFile(filepath.Join(dir, fileName))
})

// Reader reads the config from the provided file
type Reader func(fileName string) ([]byte, error)

// DirReader returns a Reader that resolves relative file names
// against dir.
func DirReader(dir string) Reader {
	return func(fileName string) ([]byte, error) {
		if filepath.IsAbs(fileName) {
			return os.ReadFile(fileName)
		}
		return os.ReadFile(filepath.Join(dir, fileName))
	}
}

// Load reads the config and decodes it as YAML into ptr. Unknown
// keys are rejected so typos in a config file surface early.
func (r Reader) Load(fileName string, ptr interface{}) error {
	data, err := r(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %s", fileName)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(ptr); err != nil {
		// an empty document leaves ptr untouched
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(err, "failed to parse config %s", fileName)
	}
	return nil
}

// Load uses the default config reader to load config
func Load(fileName string, ptr interface{}) error {
	return defaultReader.Load(fileName, ptr)
}

// SetDefaultReader sets the default reader.  Only meant for tests and
// dev environment overrides
func SetDefaultReader(f Reader) {
	defaultReader = f
}

// DefaultReader returns the current default reader. Only meant for
// tests and dev environment overrides
func DefaultReader() Reader {
	return defaultReader
}
