// Copyright 2026 Outreach Corporation. All Rights Reserved.

// Description: teelog records the output of a command into daily log
// files and sweeps expired ones.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime/debug"
	"time"

	"github.com/fatih/color"
	"github.com/getoutreach/teelog/pkg/app"
	"github.com/getoutreach/teelog/pkg/cfg"
	"github.com/getoutreach/teelog/pkg/olog"
	"github.com/getoutreach/teelog/pkg/teelog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func main() {
	app.SetName("teelog")

	exitCode, exit := setupExitHandler()
	defer exit()

	// Print a stack trace when a panic occurs and set the exit code
	defer setupPanicHandler(exitCode)

	cli.OsExiter = func(code int) { (*exitCode) = code }

	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		// exit coders already set the exit code through cli.OsExiter
		var exitErr cli.ExitCoder
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "teelog: %v\n", err)
			(*exitCode) = 1
		}
	}
}

// setupPanicHandler prints the panic message and stack trace to stderr,
// and then sets the exit code to 2.
func setupPanicHandler(exitCode *int) {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "stacktrace from panic: %s\n%s\n", r, string(debug.Stack()))

		// Go sets panic exit codes to 2
		(*exitCode) = 2
	}
}

// setupExitHandler returns the exit code to set and a function that
// calls os.Exit with it.
func setupExitHandler() (exitCode *int, exit func()) {
	exitCodeInt := 0
	exitCode = &exitCodeInt
	exit = func() {
		os.Exit(*exitCode)
	}
	return
}

// newApp builds the CLI.
func newApp() *cli.App {
	return &cli.App{
		Name:    "teelog",
		Usage:   "record the output of a command into daily log files",
		Version: app.Info().Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"TEELOG_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "logs-dir",
				Usage: "directory log files are written to",
			},
			&cli.StringFlag{
				Name:  "timezone",
				Usage: "IANA timezone deciding the day a line belongs to",
			},
			&cli.IntFlag{
				Name:  "retention-days",
				Usage: "delete log files older than this many days",
			},
			&cli.BoolFlag{
				Name:  "no-console",
				Usage: "only write to the log files",
			},
			&cli.BoolFlag{
				Name:  "no-file",
				Usage: "only write to the console",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write Prometheus metrics in the text format to this file on exit",
			},
		},
		Commands: []*cli.Command{
			{
				Name:            "run",
				Usage:           "run a command, recording its output",
				ArgsUsage:       "[--] <command> [args...]",
				SkipFlagParsing: true,
				Action:          runCommand,
			},
			{
				Name:   "sweep",
				Usage:  "delete expired log files and print what was done",
				Action: sweepCommand,
			},
		},
	}
}

// loadConfig builds the Config from the config file, the environment
// and the global flags, in increasing order of precedence.
func loadConfig(c *cli.Context) (teelog.Config, error) {
	var conf teelog.Config
	if path := c.String("config"); path != "" {
		var err error
		conf, err = teelog.LoadConfig(cfg.DefaultReader(), path)
		if err != nil {
			return teelog.Config{}, err
		}
	} else {
		conf = teelog.DefaultConfig(time.Local)
		if err := conf.ApplyEnvironment(); err != nil {
			return teelog.Config{}, err
		}
	}

	if c.IsSet("logs-dir") {
		conf.LogsDir = c.String("logs-dir")
	}
	if c.IsSet("timezone") {
		loc, err := time.LoadLocation(c.String("timezone"))
		if err != nil {
			return teelog.Config{}, errors.Wrapf(teelog.ErrInvalidConfig, "timezone %q: %v", c.String("timezone"), err)
		}
		conf.Timezone = loc
	}
	if c.IsSet("retention-days") {
		conf.RetentionDays = c.Int("retention-days")
	}
	if c.Bool("no-console") {
		conf.ConsoleOutput = false
	}
	if c.Bool("no-file") {
		conf.FileOutput = false
	}
	return conf, nil
}

// newLogger returns the diagnostic logger of a command.
func newLogger(c *cli.Context) *slog.Logger {
	return olog.New(c.App.ErrWriter).With("app", app.Info())
}

// withMetrics registers teelog's metrics when --metrics-file is set.
// The returned function writes them out.
func withMetrics(c *cli.Context, log *slog.Logger) ([]teelog.Option, func()) {
	path := c.String("metrics-file")
	if path == "" {
		return nil, func() {}
	}

	reg := prometheus.NewRegistry()
	opts := []teelog.Option{teelog.WithMetrics(teelog.NewMetrics(reg))}
	return opts, func() {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			log.Warn("failed to write metrics", "error", err, "path", path)
		}
	}
}

func runCommand(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return cli.Exit("run needs a command", 2)
	}

	conf, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	log := newLogger(c)
	opts, writeMetrics := withMetrics(c, log)
	defer writeMetrics()

	//nolint:gosec // Why: running the command we were asked to run is the point
	cmd := exec.Command(args[0], args[1:]...)
	code, err := teelog.Supervise(c.Context, conf, cmd, append(opts, teelog.WithLogger(log))...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	log := newLogger(c)
	opts, writeMetrics := withMetrics(c, log)
	defer writeMetrics()

	res, err := teelog.Sweep(conf, append(opts, teelog.WithLogger(log))...)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	printSweep(c.App.Writer, res)
	if len(res.Failed) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// printSweep prints one line per deleted or failed file and a summary.
func printSweep(w io.Writer, res teelog.SweepResult) {
	deleted := color.New(color.FgGreen).SprintFunc()
	failed := color.New(color.FgRed).SprintFunc()

	for _, name := range res.Deleted {
		fmt.Fprintf(w, "%s %s\n", deleted("deleted"), name)
	}
	for _, name := range res.Failed {
		fmt.Fprintf(w, "%s %s\n", failed("failed "), name)
	}
	fmt.Fprintf(w, "%d deleted, %d kept, %d failed\n", len(res.Deleted), res.Kept, len(res.Failed))
}
