// Package main provides the xray-inspect CLI entrypoint.
//
// xray-inspect is a read-only debugging tool for operators: it opens an
// on-disk spool directory written by the xray-sdk library and reports what
// is sitting in it. It never writes to the spool and never talks to the
// ingest backend.
//
// Usage:
//
//	xray-inspect <command> [options]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mhetreayush/xray-sdk/cli/cmd"
)

// commit is set via ldflags at build time.
var commit = "unknown"

// version mirrors cmd.sdkVersion; kept here too since it appears in
// --version output independent of the version subcommand.
const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:           "xray-inspect",
		Usage:          "Inspect an xray-sdk spool directory",
		Version:        fmt.Sprintf("%s (commit: %s)", version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.InspectCommand(),
			cmd.StatsCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes surfaced via cli.Exit, e.g. the
// 1 returned when --spool-dir is missing.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
