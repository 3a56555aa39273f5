// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Support for loading env vars as strings, ints or bools

package cfg

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// EnvString looks up a string from the environment.
func EnvString(name string) (string, error) {
	var (
		ok  bool
		val string
	)
	val, ok = os.LookupEnv(name)
	if !ok {
		return "", errors.Errorf("%q environment variable not set", name)
	}
	return val, nil
}

// EnvInt looks up an integer from the environment.
func EnvInt(name string) (int, error) {
	val, err := EnvString(name)
	if err != nil {
		return 0, err
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.Wrapf(err, "%q environment variable is not an integer", name)
	}
	return i, nil
}

// EnvBool looks up a boolean from the environment. Accepts the
// values understood by strconv.ParseBool.
func EnvBool(name string) (bool, error) {
	val, err := EnvString(name)
	if err != nil {
		return false, err
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.Wrapf(err, "%q environment variable is not a boolean", name)
	}
	return b, nil
}
