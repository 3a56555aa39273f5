// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: Static build information about the running binary.

// Package app has the static app info
package app

import (
	"log/slog"
	"runtime/debug"
)

// Version needs to be set at build time using -ldflags "-X github.com/getoutreach/teelog/pkg/app.Version=something"
// nolint:gochecknoglobals
var Version = "development"

// nolint:gochecknoglobals
var appName = "unknown"

// Info returns the static app info
//
// It is attached to diagnostics and printed by --version.
func Info() *Data {
	mainModule := ""
	goVersion := ""

	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		mainModule = buildInfo.Main.Path
		goVersion = buildInfo.GoVersion
	}

	return &Data{
		Name:       appName,
		Version:    Version,
		MainModule: mainModule,
		GoVersion:  goVersion,
	}
}

// SetName sets the app name
//
// Should only be called from tests and app initialization
func SetName(name string) {
	appName = name
}

// Data provides the global app info
type Data struct {
	Name    string
	Version string

	MainModule string
	GoVersion  string
}

// LogValue implements slog.LogValuer.
func (d *Data) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 3)
	if d.Name != "unknown" {
		attrs = append(attrs, slog.String("name", d.Name))
	}
	if d.Version != "" {
		attrs = append(attrs, slog.String("version", d.Version))
	}
	if d.GoVersion != "" {
		attrs = append(attrs, slog.String("go", d.GoVersion))
	}
	return slog.GroupValue(attrs...)
}
